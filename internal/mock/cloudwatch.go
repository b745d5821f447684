package mock

import (
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/m-mizutani/lakefront/internal/adaptor"
)

// CloudWatchClient is mock of AWS CloudWatch SDK
type CloudWatchClient struct {
	mutex sync.Mutex
	Input []*cloudwatch.PutMetricDataInput
}

// NewCloudWatchClient creates mock CloudWatch client
func NewCloudWatchClient() *CloudWatchClient {
	return &CloudWatchClient{}
}

// Factory returns CloudWatchClientFactory that always provides the mock itself
func (x *CloudWatchClient) Factory() adaptor.CloudWatchClientFactory {
	return func(region string) adaptor.CloudWatchClient { return x }
}

// Metrics returns all metric data keyed by metric name
func (x *CloudWatchClient) Metrics() map[string]*cloudwatch.MetricDatum {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	metrics := make(map[string]*cloudwatch.MetricDatum)
	for _, input := range x.Input {
		for _, d := range input.MetricData {
			metrics[aws.StringValue(d.MetricName)] = d
		}
	}
	return metrics
}

func (x *CloudWatchClient) PutMetricDataWithContext(ctx aws.Context, input *cloudwatch.PutMetricDataInput, opts ...request.Option) (*cloudwatch.PutMetricDataOutput, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	x.Input = append(x.Input, input)
	return &cloudwatch.PutMetricDataOutput{}, nil
}
