package mock

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/m-mizutani/lakefront/internal/adaptor"
)

// S3Object is stored object in S3Client mock
type S3Object struct {
	Body     []byte
	Metadata map[string]string
	Tags     map[string]string
}

// S3Client is on memory S3Client mock
type S3Client struct {
	mutex sync.Mutex
	data  map[string]map[string]*S3Object
}

// NewS3Client is constructor of S3 Mock
func NewS3Client() *S3Client {
	return &S3Client{
		data: make(map[string]map[string]*S3Object),
	}
}

// Factory returns S3ClientFactory that always provides the mock itself
func (x *S3Client) Factory() adaptor.S3ClientFactory {
	return func(region string) adaptor.S3Client { return x }
}

func noSuchKey() error {
	return awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
}

// Put stores an object directly
func (x *S3Client) Put(bucket, key string, body []byte, metadata map[string]string) {
	x.mutex.Lock()
	defer x.mutex.Unlock()
	x.put(bucket, key, body, metadata)
}

func (x *S3Client) put(bucket, key string, body []byte, metadata map[string]string) {
	bkt, ok := x.data[bucket]
	if !ok {
		bkt = make(map[string]*S3Object)
		x.data[bucket] = bkt
	}
	bkt[key] = &S3Object{Body: body, Metadata: metadata, Tags: map[string]string{}}
}

// Get returns stored object or nil
func (x *S3Client) Get(bucket, key string) *S3Object {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	if bkt, ok := x.data[bucket]; ok {
		return bkt[key]
	}
	return nil
}

// Keys returns all keys in the bucket
func (x *S3Client) Keys(bucket string) []string {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	var keys []string
	for k := range x.data[bucket] {
		keys = append(keys, k)
	}
	return keys
}

// canonicalMetadata converts keys as AWS SDK does for response headers
func canonicalMetadata(meta map[string]string) map[string]*string {
	out := make(map[string]*string, len(meta))
	for k, v := range meta {
		out[http.CanonicalHeaderKey(k)] = aws.String(v)
	}
	return out
}

func (x *S3Client) lookup(bucket, key *string) (*S3Object, bool) {
	bkt, ok := x.data[aws.StringValue(bucket)]
	if !ok {
		return nil, false
	}
	obj, ok := bkt[aws.StringValue(key)]
	return obj, ok
}

// GetObjectWithContext of S3Client loads []bytes from memory
func (x *S3Client) GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	obj, ok := x.lookup(input.Bucket, input.Key)
	if !ok {
		return nil, noSuchKey()
	}

	return &s3.GetObjectOutput{
		Body:     ioutil.NopCloser(bytes.NewReader(obj.Body)),
		Metadata: canonicalMetadata(obj.Metadata),
	}, nil
}

// PutObjectWithContext of S3Client saves []bytes to memory
func (x *S3Client) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	raw, err := ioutil.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}

	x.mutex.Lock()
	defer x.mutex.Unlock()
	x.put(aws.StringValue(input.Bucket), aws.StringValue(input.Key), raw, aws.StringValueMap(input.Metadata))

	return &s3.PutObjectOutput{}, nil
}

func (x *S3Client) PutObjectTaggingWithContext(ctx aws.Context, input *s3.PutObjectTaggingInput, opts ...request.Option) (*s3.PutObjectTaggingOutput, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	obj, ok := x.lookup(input.Bucket, input.Key)
	if !ok {
		return nil, noSuchKey()
	}

	obj.Tags = map[string]string{}
	for _, tag := range input.Tagging.TagSet {
		obj.Tags[aws.StringValue(tag.Key)] = aws.StringValue(tag.Value)
	}
	return &s3.PutObjectTaggingOutput{}, nil
}
