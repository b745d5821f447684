package main

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/jeremywohl/flatten"
	"github.com/m-mizutani/lakefront/internal/service"
	"github.com/m-mizutani/lakefront/pkg/batch"
	"github.com/m-mizutani/lakefront/pkg/handler"
	"github.com/m-mizutani/lakefront/pkg/models"
	"github.com/pkg/errors"
)

const defaultColumnSeparator = "__"

func flattenJSON(ctx context.Context, args *handler.Arguments, record *batch.Record, prior batch.Results) (interface{}, error) {
	var q models.FlattenQueue
	if err := record.Bind(&q); err != nil {
		return nil, err
	}

	log := logger.WithField("queue", q)
	if q.BucketName == "" || q.Key == "" || q.TargetBucket == "" {
		log.Error("Missing event parameter bucketName, key or targetBucket, ignored")
		return nil, nil
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

	var nested map[string]interface{}
	if err := json.Unmarshal(obj.Body, &nested); err != nil {
		log.WithError(err).Error("Invalid JSON format, ignored")
		return nil, nil
	}

	sep := args.ColumnSeparator
	if sep == "" {
		sep = defaultColumnSeparator
	}

	flat, err := flatten.Flatten(nested, "", flatten.SeparatorStyle{Middle: sep})
	if err != nil {
		return nil, errors.Wrapf(err, "Fail to flatten: %s", src.Path())
	}

	raw, err := json.Marshal(flat)
	if err != nil {
		return nil, errors.Wrapf(err, "Fail to marshal flattened object: %s", src.Path())
	}

	dst := models.NewS3Object(args.AwsRegion, q.TargetBucket, q.Key)
	if err := objects.Put(ctx, dst, &service.Object{
		Body:        raw,
		Metadata:    obj.Metadata,
		ContentType: "application/json",
	}); err != nil {
		return nil, errors.Wrap(err, "Unexpected response putting the object")
	}

	log.WithField("dst", dst.Path()).Debug("Successfully put the flattened object")

	return &models.FlattenResult{
		Src:     src,
		Dst:     dst,
		Columns: len(flat),
	}, nil
}
