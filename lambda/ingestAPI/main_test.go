package main_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	"github.com/m-mizutani/lakefront/internal/mock"
	"github.com/m-mizutani/lakefront/pkg/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	main "github.com/m-mizutani/lakefront/lambda/ingestAPI"
)

func invoke(t *testing.T, req events.APIGatewayProxyRequest) (*mock.S3Client, *mock.SQSClient, events.APIGatewayProxyResponse) {
	s3 := mock.NewS3Client()
	sqs := mock.NewSQSClient()
	url := sqs.AddQueue("ap-northeast-1", "123456789012", "ingest-queue")

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	args := handler.Arguments{
		EnvVars: handler.EnvVars{
			AwsRegion:      "ap-northeast-1",
			RawBucketName:  "raw-bucket",
			IngestQueueURL: url,
		},
		Event:  raw,
		NewS3:  s3.Factory(),
		NewSQS: sqs.Factory(),
	}

	resp, err := main.Handler(context.Background(), args)
	require.NoError(t, err)
	require.IsType(t, events.APIGatewayProxyResponse{}, resp)
	return s3, sqs, resp.(events.APIGatewayProxyResponse)
}

func TestIngestAPI(t *testing.T) {
	t.Run("post record", func(tt *testing.T) {
		s3, sqs, resp := invoke(tt, events.APIGatewayProxyRequest{
			HTTPMethod: http.MethodPost,
			Path:       "/v1/tables/access/records",
			Body:       `{"user":"blue"}`,
		})
		require.Equal(tt, http.StatusCreated, resp.StatusCode)

		var body struct {
			Key string `json:"key"`
		}
		require.NoError(tt, json.Unmarshal([]byte(resp.Body), &body))
		assert.NotNil(tt, s3.Get("raw-bucket", body.Key))
		assert.Equal(tt, 1, len(sqs.SendInput))
	})

	t.Run("base64 encoded body", func(tt *testing.T) {
		s3, _, resp := invoke(tt, events.APIGatewayProxyRequest{
			HTTPMethod:      http.MethodPost,
			Path:            "/v1/tables/access/records",
			Body:            base64.StdEncoding.EncodeToString([]byte(`{"n":1}`)),
			IsBase64Encoded: true,
		})
		require.Equal(tt, http.StatusCreated, resp.StatusCode)

		var body struct {
			Key string `json:"key"`
		}
		require.NoError(tt, json.Unmarshal([]byte(resp.Body), &body))
		obj := s3.Get("raw-bucket", body.Key)
		require.NotNil(tt, obj)
		assert.Equal(tt, base64.StdEncoding.EncodeToString([]byte(`{"n":1}`)), string(obj.Body))
	})

	t.Run("empty body", func(tt *testing.T) {
		_, sqs, resp := invoke(tt, events.APIGatewayProxyRequest{
			HTTPMethod: http.MethodPost,
			Path:       "/v1/tables/access/records",
		})
		assert.Equal(tt, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(tt, 0, len(sqs.SendInput))
	})
}
