package adaptor

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
)

// CloudWatchClientFactory is interface CloudWatchClient constructor
type CloudWatchClientFactory func(region string) CloudWatchClient

// CloudWatchClient is interface of AWS CloudWatch SDK
type CloudWatchClient interface {
	PutMetricDataWithContext(aws.Context, *cloudwatch.PutMetricDataInput, ...request.Option) (*cloudwatch.PutMetricDataOutput, error)
}

var _ CloudWatchClient = (*cloudwatch.CloudWatch)(nil)

// NewCloudWatchClient creates actual AWS CloudWatch SDK client
func NewCloudWatchClient(region string) CloudWatchClient {
	return cloudwatch.New(newSession(region))
}
