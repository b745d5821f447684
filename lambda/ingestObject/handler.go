package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/m-mizutani/lakefront/internal/service"
	"github.com/m-mizutani/lakefront/pkg/batch"
	"github.com/m-mizutani/lakefront/pkg/handler"
	"github.com/m-mizutani/lakefront/pkg/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	statusTagKey      = "lakefront-status"
	statusInvalidJSON = "invalid-json"
)

func ingestObject(ctx context.Context, args *handler.Arguments, record *batch.Record, prior batch.Results) (interface{}, error) {
	var q models.IngestQueue
	if err := record.Bind(&q); err != nil {
		return nil, err
	}

	log := logger.WithField("queue", q)
	if q.BucketName == "" || q.Key == "" {
		log.Error("Missing event parameter bucketName or key, ignored")
		return nil, nil
	}
	if args.JSONBucketName == "" {
		return nil, errors.New("JSON_BUCKET_NAME is not set")
	}

	src := models.NewS3Object(args.AwsRegion, q.BucketName, q.Key)
	objects := args.ObjectService()

	obj, err := objects.Get(ctx, src)
	if err != nil {
		return nil, errors.Wrap(err, "Unhandled exception getting the S3 object")
	} else if obj == nil {
		log.Error("S3 object does not exist, ignored")
		return nil, nil
	}

	body, err := decodeBody(obj.Body)
	if err != nil {
		log.WithError(err).Error("Invalid JSON format, ignored")
		if err := objects.Tag(ctx, src, map[string]string{statusTagKey: statusInvalidJSON}); err != nil {
			log.WithError(err).Warn("Failed to tag invalid object")
		}
		return nil, nil
	}

	requestTime, hasTime := obj.Metadata[models.MetadataRequestTime]
	table, hasTable := obj.Metadata[models.MetadataTable]
	if !hasTime || !hasTable {
		log.WithField("metadata", obj.Metadata).Error("Missing required metadata, ignored")
		return nil, nil
	}

	ts, err := time.Parse(models.RequestTimeLayout, requestTime)
	if err != nil {
		return nil, errors.Wrapf(err, "Invalid request-time metadata: %s", requestTime)
	}

	keys := partitionKeys(ts)
	prefix := partitionPrefix(table, keys)
	dst := models.NewS3Object(args.AwsRegion, args.JSONBucketName, strings.Trim(prefix+"/"+q.Key+"/"+q.Key, "/"))

	if err := objects.Put(ctx, dst, &service.Object{
		Body:        body,
		Metadata:    obj.Metadata,
		ContentType: "application/json",
	}); err != nil {
		return nil, errors.Wrap(err, "Unexpected response putting the object")
	}

	location := models.NewS3Object("", args.JSONBucketName, prefix+"/")
	log.WithFields(logrus.Fields{
		"src": src.Path(),
		"dst": dst.Path(),
	}).Debug("Successfully copied S3 object to its new location")

	return &models.IngestResult{
		Src:      src,
		Dst:      dst,
		Table:    table,
		Location: location.Path(),
		Keys:     keys,
	}, nil
}

// decodeBody decodes base64 encoded body of API Gateway and re-encodes the JSON
func decodeBody(raw []byte) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, errors.Wrap(err, "Invalid base64 body")
	}

	var v interface{}
	if err := json.Unmarshal(decoded, &v); err != nil {
		return nil, errors.Wrap(err, "Invalid JSON body")
	}

	return json.Marshal(v)
}

var partitionKeyNames = []string{"year", "month", "day", "hour", "minute", "second"}

func partitionKeys(ts time.Time) map[string]string {
	return map[string]string{
		"year":   fmt.Sprintf("%04d", ts.Year()),
		"month":  fmt.Sprintf("%02d", int(ts.Month())),
		"day":    fmt.Sprintf("%02d", ts.Day()),
		"hour":   fmt.Sprintf("%02d", ts.Hour()),
		"minute": fmt.Sprintf("%02d", ts.Minute()),
		"second": fmt.Sprintf("%02d", ts.Second()),
	}
}

func partitionPrefix(table string, keys map[string]string) string {
	parts := []string{"table=" + table}
	for _, k := range partitionKeyNames {
		parts = append(parts, k+"="+keys[k])
	}
	return strings.Join(parts, "/")
}
