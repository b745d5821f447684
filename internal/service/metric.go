package service

import (
	"context"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/m-mizutani/lakefront/internal/adaptor"
	"github.com/sirupsen/logrus"
)

// DefaultMetricsNamespace is used when namespace is empty or reserved by AWS
const DefaultMetricsNamespace = "Application"

// MetricService puts metrics to CloudWatch with dimension Name=<function>
type MetricService struct {
	newCloudWatch adaptor.CloudWatchClientFactory
	region        string
	namespace     string
	function      string
}

// NewMetricService is constructor of MetricService
func NewMetricService(newCloudWatch adaptor.CloudWatchClientFactory, region, namespace, function string) *MetricService {
	if namespace == "" || strings.HasPrefix(namespace, "AWS/") {
		namespace = DefaultMetricsNamespace
	}

	return &MetricService{
		newCloudWatch: newCloudWatch,
		region:        region,
		namespace:     namespace,
		function:      function,
	}
}

// Metric is one Count data point. Dims are added to Name dimension.
type Metric struct {
	Name  string
	Value float64
	Dims  map[string]string
}

// PutMetric puts one Count metric. It returns false if PutMetricData fails.
func (x *MetricService) PutMetric(ctx context.Context, name string, value float64, dims map[string]string) bool {
	return x.PutMetrics(ctx, Metric{Name: name, Value: value, Dims: dims})
}

func (x *MetricService) dimensions(dims map[string]string) []*cloudwatch.Dimension {
	dimensions := []*cloudwatch.Dimension{
		{Name: aws.String("Name"), Value: aws.String(x.function)},
	}

	var keys []string
	for k := range dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		dimensions = append(dimensions, &cloudwatch.Dimension{
			Name:  aws.String(k),
			Value: aws.String(dims[k]),
		})
	}
	return dimensions
}

// PutMetrics puts metrics by one PutMetricData request
func (x *MetricService) PutMetrics(ctx context.Context, metrics ...Metric) bool {
	if len(metrics) == 0 {
		return true
	}

	var data []*cloudwatch.MetricDatum
	var names []string
	for _, m := range metrics {
		names = append(names, m.Name)
		data = append(data, &cloudwatch.MetricDatum{
			MetricName: aws.String(m.Name),
			Dimensions: x.dimensions(m.Dims),
			Value:      aws.Float64(m.Value),
			Unit:       aws.String(cloudwatch.StandardUnitCount),
		})
	}

	client := x.newCloudWatch(x.region)
	_, err := client.PutMetricDataWithContext(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(x.namespace),
		MetricData: data,
	})
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"metric_names": names,
			"namespace":    x.namespace,
		}).Error("Failed to put metrics to CloudWatch")
		return false
	}

	return true
}
