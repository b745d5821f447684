package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/m-mizutani/lakefront/internal/mock"
	"github.com/m-mizutani/lakefront/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerName(t *testing.T) {
	assert.Equal(t, "my-layer", service.LayerName("arn:aws:lambda:us-east-1:123456789012:layer:my-layer"))
	assert.Equal(t, "my-layer", service.LayerName("arn:aws:lambda:us-east-1:123456789012:layer:my-layer:3"))
	assert.Equal(t, "gov_layer", service.LayerName("arn:aws-us-gov:lambda:us-gov-west-1:123456789012:layer:gov_layer"))
	assert.Equal(t, "plain", service.LayerName("plain"))
}

func TestLatestVersionARN(t *testing.T) {
	ctx := context.Background()

	t.Run("latest version", func(tt *testing.T) {
		client := mock.NewLambdaClient()
		client.AddLayer("my-layer", 1, 2, 5)
		svc := service.NewLayerService(client.Factory(), "us-east-1")

		arn, err := svc.LatestVersionARN(ctx, "arn:aws:lambda:us-east-1:123456789012:layer:my-layer")
		require.NoError(tt, err)
		assert.Equal(tt, "arn:aws:lambda:us-east-1:123456789012:layer:my-layer:5", arn)
		require.Equal(tt, 1, len(client.Input))
		assert.Equal(tt, "my-layer", aws.StringValue(client.Input[0].LayerName))
		assert.Equal(tt, int64(1), aws.Int64Value(client.Input[0].MaxItems))
	})

	t.Run("no such layer", func(tt *testing.T) {
		svc := service.NewLayerService(mock.NewLambdaClient().Factory(), "us-east-1")
		_, err := svc.LatestVersionARN(ctx, "nothing")
		assert.True(tt, errors.Is(err, service.ErrLayerNotFound))
	})

	t.Run("layer without version", func(tt *testing.T) {
		client := mock.NewLambdaClient()
		client.AddLayer("empty")
		svc := service.NewLayerService(client.Factory(), "us-east-1")
		_, err := svc.LatestVersionARN(ctx, "empty")
		assert.True(tt, errors.Is(err, service.ErrLayerNotFound))
	})

	t.Run("invalid name", func(tt *testing.T) {
		client := mock.NewLambdaClient()
		client.Err = awserr.New(lambda.ErrCodeInvalidParameterValueException, "bad name", nil)
		svc := service.NewLayerService(client.Factory(), "us-east-1")
		_, err := svc.LatestVersionARN(ctx, "bad name!")
		assert.True(tt, errors.Is(err, service.ErrInvalidLayerName))
	})

	t.Run("other error", func(tt *testing.T) {
		client := mock.NewLambdaClient()
		client.Err = awserr.New(lambda.ErrCodeServiceException, "down", nil)
		svc := service.NewLayerService(client.Factory(), "us-east-1")
		_, err := svc.LatestVersionARN(ctx, "x")
		require.Error(tt, err)
		assert.False(tt, errors.Is(err, service.ErrLayerNotFound))
	})
}
