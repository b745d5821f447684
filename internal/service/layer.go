package service

import (
	"context"
	"regexp"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/m-mizutani/lakefront/internal/adaptor"
	"github.com/pkg/errors"
)

var (
	ErrLayerNotFound      = errors.New("Lambda layer does not exist")
	ErrInvalidLayerName   = errors.New("Invalid layer name")
	ErrUnexpectedResponse = errors.New("Unexpected response from Lambda API")
)

var layerARNPattern = regexp.MustCompile(`^arn:(?:aws[a-zA-Z-]*)?:lambda:[a-z]{2}(?:(?:-gov)|(?:-iso(?:b?)))?-[a-z]+-\d{1}:\d{12}:layer:([a-zA-Z0-9-_]+)`)

// LayerName extracts layer name if name is a layer (version) ARN
func LayerName(name string) string {
	if m := layerARNPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return name
}

// LayerService is accessor to Lambda layers
type LayerService struct {
	newLambda adaptor.LambdaClientFactory
	region    string
}

// NewLayerService is constructor of LayerService
func NewLayerService(newLambda adaptor.LambdaClientFactory, region string) *LayerService {
	return &LayerService{
		newLambda: newLambda,
		region:    region,
	}
}

// LatestVersionARN returns LayerVersionArn of the latest version. name can be
// a layer name or a layer ARN.
func (x *LayerService) LatestVersionARN(ctx context.Context, name string) (string, error) {
	layerName := LayerName(name)
	client := x.newLambda(x.region)

	output, err := client.ListLayerVersionsWithContext(ctx, &lambda.ListLayerVersionsInput{
		LayerName: aws.String(layerName),
		MaxItems:  aws.Int64(1),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			switch aerr.Code() {
			case lambda.ErrCodeResourceNotFoundException:
				return "", errors.Wrap(ErrLayerNotFound, layerName)
			case lambda.ErrCodeInvalidParameterValueException:
				return "", errors.Wrap(ErrInvalidLayerName, aerr.Message())
			}
		}
		return "", errors.Wrapf(err, "Fail to list layer versions: %s", layerName)
	}

	if len(output.LayerVersions) == 0 {
		return "", errors.Wrap(ErrLayerNotFound, layerName)
	}

	arn := aws.StringValue(output.LayerVersions[0].LayerVersionArn)
	if arn == "" {
		return "", errors.Wrapf(ErrUnexpectedResponse, "No LayerVersionArn: %v", output)
	}

	logger.WithField("layer_version_arn", arn).Debug("Got latest layer version")
	return arn, nil
}
