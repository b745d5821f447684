package service

import (
	"bytes"
	"context"
	"io/ioutil"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/m-mizutani/lakefront/internal/adaptor"
	"github.com/m-mizutani/lakefront/pkg/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Object is body and user metadata of S3 object. Keys of Metadata are lower case.
type Object struct {
	Body        []byte
	Metadata    map[string]string
	ContentType string
}

// ObjectService is accessor to S3
type ObjectService struct {
	newS3 adaptor.S3ClientFactory
}

// NewObjectService is constructor of ObjectService
func NewObjectService(newS3 adaptor.S3ClientFactory) *ObjectService {
	return &ObjectService{
		newS3: newS3,
	}
}

// Get downloads a specified object. It returns nil without error if the key does not exist.
func (x *ObjectService) Get(ctx context.Context, src models.S3Object) (*Object, error) {
	client := x.newS3(src.Region)
	input := &s3.GetObjectInput{
		Bucket: aws.String(src.Bucket),
		Key:    aws.String(src.Key),
	}

	resp, err := client.GetObjectWithContext(ctx, input)
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			if aerr.Code() == s3.ErrCodeNoSuchKey {
				logger.WithFields(logrus.Fields{
					"bucket": src.Bucket,
					"key":    src.Key,
				}).Warn("No such key, ignored")
				return nil, nil
			}

			return nil, errors.Wrapf(aerr, "Fail to download an object in AWS: %s", src.Path())
		}

		return nil, errors.Wrapf(err, "Fail to download an object in https: %s", src.Path())
	}
	defer resp.Body.Close()

	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "Fail to read an object: %s", src.Path())
	}

	obj := &Object{
		Body:        raw,
		Metadata:    make(map[string]string),
		ContentType: aws.StringValue(resp.ContentType),
	}
	for k, v := range resp.Metadata {
		obj.Metadata[strings.ToLower(k)] = aws.StringValue(v)
	}

	logger.WithFields(logrus.Fields{
		"path": src.Path(),
		"size": len(raw),
	}).Trace("Downloaded S3 object")

	return obj, nil
}

// Put uploads an object with metadata
func (x *ObjectService) Put(ctx context.Context, dst models.S3Object, obj *Object) error {
	client := x.newS3(dst.Region)
	input := &s3.PutObjectInput{
		Body:   bytes.NewReader(obj.Body),
		Bucket: aws.String(dst.Bucket),
		Key:    aws.String(dst.Key),
	}
	if len(obj.Metadata) > 0 {
		input.Metadata = aws.StringMap(obj.Metadata)
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}

	resp, err := client.PutObjectWithContext(ctx, input)
	if err != nil {
		return errors.Wrapf(err, "Fail to upload an object: %s", dst.Path())
	}

	logger.WithFields(logrus.Fields{
		"resp":   resp,
		"bucket": dst.Bucket,
		"key":    dst.Key,
	}).Debug("Uploaded an object")

	return nil
}

// Tag replaces tag set of an object
func (x *ObjectService) Tag(ctx context.Context, dst models.S3Object, tags map[string]string) error {
	client := x.newS3(dst.Region)

	tagging := &s3.Tagging{}
	for k, v := range tags {
		tagging.TagSet = append(tagging.TagSet, &s3.Tag{
			Key:   aws.String(k),
			Value: aws.String(v),
		})
	}

	if _, err := client.PutObjectTaggingWithContext(ctx, &s3.PutObjectTaggingInput{
		Bucket:  aws.String(dst.Bucket),
		Key:     aws.String(dst.Key),
		Tagging: tagging,
	}); err != nil {
		return errors.Wrapf(err, "Fail to tag an object: %s", dst.Path())
	}

	return nil
}
