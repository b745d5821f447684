package adaptor

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/athena"
)

// AthenaClientFactory is interface AthenaClient constructor
type AthenaClientFactory func(region string) AthenaClient

// AthenaClient is interface of AWS Athena SDK
type AthenaClient interface {
	StartQueryExecutionWithContext(aws.Context, *athena.StartQueryExecutionInput, ...request.Option) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecutionWithContext(aws.Context, *athena.GetQueryExecutionInput, ...request.Option) (*athena.GetQueryExecutionOutput, error)
	GetQueryResultsWithContext(aws.Context, *athena.GetQueryResultsInput, ...request.Option) (*athena.GetQueryResultsOutput, error)
	StopQueryExecutionWithContext(aws.Context, *athena.StopQueryExecutionInput, ...request.Option) (*athena.StopQueryExecutionOutput, error)
}

var _ AthenaClient = (*athena.Athena)(nil)

// NewAthenaClient creates actual AWS Athena SDK client
func NewAthenaClient(region string) AthenaClient {
	return athena.New(newSession(region))
}
