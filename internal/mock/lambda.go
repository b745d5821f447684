package mock

import (
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/m-mizutani/lakefront/internal/adaptor"
)

// LambdaClient is mock of AWS Lambda SDK. Only layer API is supported.
type LambdaClient struct {
	mutex  sync.Mutex
	layers map[string][]int64
	Input  []*lambda.ListLayerVersionsInput

	// Err is returned by ListLayerVersions if set
	Err error
}

// NewLambdaClient creates mock Lambda client without layers
func NewLambdaClient() *LambdaClient {
	return &LambdaClient{layers: make(map[string][]int64)}
}

// Factory returns LambdaClientFactory that always provides the mock itself
func (x *LambdaClient) Factory() adaptor.LambdaClientFactory {
	return func(region string) adaptor.LambdaClient { return x }
}

// AddLayer registers versions of the layer. An empty versions means layer
// without any published version.
func (x *LambdaClient) AddLayer(name string, versions ...int64) {
	x.mutex.Lock()
	defer x.mutex.Unlock()
	x.layers[name] = versions
}

func (x *LambdaClient) ListLayerVersionsWithContext(ctx aws.Context, input *lambda.ListLayerVersionsInput, opts ...request.Option) (*lambda.ListLayerVersionsOutput, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	x.Input = append(x.Input, input)
	if x.Err != nil {
		return nil, x.Err
	}

	name := aws.StringValue(input.LayerName)
	versions, ok := x.layers[name]
	if !ok {
		return nil, awserr.New(lambda.ErrCodeResourceNotFoundException, "layer not found", nil)
	}

	output := &lambda.ListLayerVersionsOutput{}
	// latest first as AWS does
	for i := len(versions) - 1; i >= 0; i-- {
		output.LayerVersions = append(output.LayerVersions, &lambda.LayerVersionsListItem{
			Version:         aws.Int64(versions[i]),
			LayerVersionArn: aws.String(fmt.Sprintf("arn:aws:lambda:us-east-1:123456789012:layer:%s:%d", name, versions[i])),
		})
		if input.MaxItems != nil && int64(len(output.LayerVersions)) >= *input.MaxItems {
			break
		}
	}
	return output, nil
}
