package api_test

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/m-mizutani/lakefront/internal/mock"
	"github.com/m-mizutani/lakefront/pkg/api"
	"github.com/m-mizutani/lakefront/pkg/handler"
	"github.com/m-mizutani/lakefront/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	s3     *mock.S3Client
	sqs    *mock.SQSClient
	router *gin.Engine
}

func setup() *testEnv {
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		s3:  mock.NewS3Client(),
		sqs: mock.NewSQSClient(),
	}
	url := env.sqs.AddQueue("ap-northeast-1", "123456789012", "ingest-queue")

	args := &handler.Arguments{
		EnvVars: handler.EnvVars{
			AwsRegion:      "ap-northeast-1",
			RawBucketName:  "raw-bucket",
			IngestQueueURL: url,
		},
		NewS3:  env.s3.Factory(),
		NewSQS: env.sqs.Factory(),
	}
	env.router = api.NewRouter(args)
	return env
}

func (x *testEnv) post(path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	x.router.ServeHTTP(w, req)
	return w
}

func TestPostRecord(t *testing.T) {
	api.Now = func() time.Time { return time.Date(1983, 4, 20, 0, 5, 3, 0, time.UTC) }
	defer func() { api.Now = time.Now }()

	t.Run("record is saved and queued", func(tt *testing.T) {
		env := setup()
		w := env.post("/v1/tables/access/records", `{"user":"blue"}`)
		require.Equal(tt, http.StatusCreated, w.Code)

		var resp api.PostRecordResponse
		require.NoError(tt, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(tt, resp.Key)

		obj := env.s3.Get("raw-bucket", resp.Key)
		require.NotNil(tt, obj)
		raw, err := base64.StdEncoding.DecodeString(string(obj.Body))
		require.NoError(tt, err)
		assert.Equal(tt, `{"user":"blue"}`, string(raw))
		assert.Equal(tt, "access", obj.Metadata[models.MetadataTable])
		assert.Equal(tt, "20/Apr/1983:00:05:03 +0000", obj.Metadata[models.MetadataRequestTime])

		require.Equal(tt, 1, len(env.sqs.SendInput))
		var q models.IngestQueue
		require.NoError(tt, json.Unmarshal([]byte(aws.StringValue(env.sqs.SendInput[0].MessageBody)), &q))
		assert.Equal(tt, "raw-bucket", q.BucketName)
		assert.Equal(tt, resp.Key, q.Key)
	})

	t.Run("bad requests", func(tt *testing.T) {
		testCases := []struct {
			title string
			path  string
			body  string
		}{
			{"empty body", "/v1/tables/access/records", ""},
			{"invalid JSON", "/v1/tables/access/records", `{"user":`},
			{"invalid table", "/v1/tables/acc-ess/records", `{"user":"blue"}`},
		}

		for _, tc := range testCases {
			tt.Run(tc.title, func(ttt *testing.T) {
				env := setup()
				w := env.post(tc.path, tc.body)
				assert.Equal(ttt, http.StatusBadRequest, w.Code)
				assert.Contains(ttt, w.Body.String(), "message")
				assert.Equal(ttt, 0, len(env.s3.Keys("raw-bucket")))
				assert.Equal(ttt, 0, len(env.sqs.SendInput))
			})
		}
	})

	t.Run("unknown route", func(tt *testing.T) {
		env := setup()
		w := env.post("/v1/tables/access", `{}`)
		assert.Equal(tt, http.StatusNotFound, w.Code)
	})
}
