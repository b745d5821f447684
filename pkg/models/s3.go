package models

import (
	"errors"
	"fmt"
	"strings"
)

// S3Object has basic location information of S3 Object.
type S3Object struct {
	Region string `json:"region,omitempty"`
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// NewS3Object is constructor of S3Object
func NewS3Object(region, bucket, key string) S3Object {
	return S3Object{
		Region: region,
		Bucket: bucket,
		Key:    key,
	}
}

// AppendKey adds a path element to Key with one slash separator.
func (x *S3Object) AppendKey(append string) {
	if x.Key == "" || strings.HasSuffix(x.Key, "/") {
		x.Key += append
	} else {
		x.Key += "/" + append
	}
}

// Path returns s3://bucket/key format string
func (x S3Object) Path() string {
	return fmt.Sprintf("s3://%s/%s", x.Bucket, strings.TrimPrefix(x.Key, "/"))
}

// ParseS3Path converts s3://bucket/key to S3Object. Region is left empty.
func ParseS3Path(raw string) (*S3Object, error) {
	if !strings.HasPrefix(raw, "s3://") {
		return nil, errors.New("Invalid S3 path (s3:// is required)")
	}

	parts := strings.SplitN(strings.TrimPrefix(raw, "s3://"), "/", 2)
	if parts[0] == "" {
		return nil, errors.New("Invalid S3 path (bucket is required)")
	}

	obj := &S3Object{Bucket: parts[0]}
	if len(parts) == 2 {
		obj.Key = parts[1]
	}
	return obj, nil
}

// Object metadata set by ingestAPI and read by ingestObject
const (
	MetadataTable       = "table"
	MetadataRequestTime = "request-time"

	// RequestTimeLayout is Common Log Format timestamp as API Gateway sets
	RequestTimeLayout = "02/Jan/2006:15:04:05 -0700"
)
