package main

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/k0kubun/pp"
	"github.com/m-mizutani/lakefront/pkg/handler"
	"github.com/pkg/errors"
)

type arguments struct {
	StackName string
	Region    string
	LogLevel  string
}

// handlerArgs builds Arguments with real AWS clients for services
func (x arguments) handlerArgs() *handler.Arguments {
	return &handler.Arguments{
		EnvVars: handler.EnvVars{
			AwsRegion:    x.Region,
			FunctionName: "lakectl",
		},
	}
}

func (x arguments) describeStack() (map[string]*cloudformation.StackResource, error) {
	if x.StackName == "" {
		return nil, errors.New("--stack-name is required")
	}

	ssn := session.Must(session.NewSession(&aws.Config{Region: aws.String(x.Region)}))
	client := cloudformation.New(ssn)

	input := &cloudformation.DescribeStackResourcesInput{
		StackName: aws.String(x.StackName),
	}

	output, err := client.DescribeStackResources(input)
	if err != nil {
		return nil, errors.Wrapf(err, "Fail to DescribeStackResources for %v", x.StackName)
	}

	resources := map[string]*cloudformation.StackResource{}
	for i := range output.StackResources {
		rsc := output.StackResources[i]
		resources[aws.StringValue(rsc.LogicalResourceId)] = rsc
	}

	return resources, nil
}

// physicalID resolves logical resource ID in the stack
func (x arguments) physicalID(logicalID string) (string, error) {
	resources, err := x.describeStack()
	if err != nil {
		return "", err
	}

	rsc, ok := resources[logicalID]
	if !ok {
		return "", errors.Errorf("Resource %s is not found in %s", logicalID, x.StackName)
	}
	return aws.StringValue(rsc.PhysicalResourceId), nil
}

func printResult(v interface{}) {
	pp.ColoringEnabled = false
	pp.Println(v)
}
