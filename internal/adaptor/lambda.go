package adaptor

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/lambda"
)

// LambdaClientFactory is interface LambdaClient constructor
type LambdaClientFactory func(region string) LambdaClient

// LambdaClient is interface of AWS Lambda SDK
type LambdaClient interface {
	ListLayerVersionsWithContext(aws.Context, *lambda.ListLayerVersionsInput, ...request.Option) (*lambda.ListLayerVersionsOutput, error)
}

var _ LambdaClient = (*lambda.Lambda)(nil)

// NewLambdaClient creates actual AWS Lambda SDK client
func NewLambdaClient(region string) LambdaClient {
	return lambda.New(newSession(region))
}
