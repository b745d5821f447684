package api

import (
	"encoding/base64"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/m-mizutani/lakefront/internal/service"
	"github.com/m-mizutani/lakefront/pkg/handler"
	"github.com/m-mizutani/lakefront/pkg/models"
	"github.com/pkg/errors"
)

// PostRecordResponse is returned when a record is accepted
type PostRecordResponse struct {
	Key string `json:"key"`
}

// Now is replaced in tests
var Now = time.Now

func postRecord(args *handler.Arguments, c *gin.Context) (*Response, Error) {
	table := c.Param("table")
	if !service.ValidIdentifier(table) {
		return nil, newUserErrorf(http.StatusBadRequest, "Invalid table name: %s", table)
	}

	body, err := ioutil.ReadAll(c.Request.Body)
	if err != nil {
		return nil, wrapSystemError(err, http.StatusInternalServerError, "Fail to read body")
	}
	if len(body) == 0 {
		return nil, newUserErrorf(http.StatusBadRequest, "Empty body")
	}
	if !json.Valid(body) {
		return nil, wrapUserError(errors.New("invalid JSON"), http.StatusBadRequest, "Body is not JSON")
	}

	if args.RawBucketName == "" || args.IngestQueueURL == "" {
		return nil, wrapSystemError(errors.New("RAW_BUCKET_NAME and INGEST_QUEUE_URL are required"),
			http.StatusInternalServerError, "Server is not configured")
	}

	key := uuid.New().String()
	dst := models.NewS3Object(args.AwsRegion, args.RawBucketName, key)
	encoded := base64.StdEncoding.EncodeToString(body)

	if err := args.ObjectService().Put(c.Request.Context(), dst, &service.Object{
		Body: []byte(encoded),
		Metadata: map[string]string{
			models.MetadataTable:       table,
			models.MetadataRequestTime: Now().UTC().Format(models.RequestTimeLayout),
		},
	}); err != nil {
		return nil, wrapSystemError(err, http.StatusInternalServerError, "Fail to save record")
	}

	q := &models.IngestQueue{BucketName: dst.Bucket, Key: dst.Key}
	if _, err := args.QueueService().SendMessage(c.Request.Context(), args.IngestQueueURL, q); err != nil {
		return nil, wrapSystemError(err, http.StatusInternalServerError, "Fail to queue record")
	}

	return &Response{
		Code:    http.StatusCreated,
		Message: &PostRecordResponse{Key: key},
	}, nil
}
