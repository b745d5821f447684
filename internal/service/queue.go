package service

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/goccy/go-json"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/m-mizutani/lakefront/internal/adaptor"
	"github.com/m-mizutani/lakefront/pkg/batch"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultQueueURLCacheSize is enough for queues of one deployment
	DefaultQueueURLCacheSize = 128
	DefaultQueueURLCacheTTL  = time.Hour
)

// ErrQueueNotResolved is returned when queue URL can not be found by ARN
var ErrQueueNotResolved = errors.New("Queue URL is not resolved")

// QueueURLCache stores queue URL by queue ARN
type QueueURLCache interface {
	Get(key string) (string, bool)
	Add(key, value string) bool
}

// NewQueueURLCache creates bounded cache whose entries expire after ttl
func NewQueueURLCache(size int, ttl time.Duration) QueueURLCache {
	if size <= 0 {
		size = DefaultQueueURLCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultQueueURLCacheTTL
	}
	return expirable.NewLRU[string, string](size, nil, ttl)
}

// QueueService is accessor to SQS. It implements batch.QueueClient.
type QueueService struct {
	newSQS adaptor.SQSClientFactory
	cache  QueueURLCache
	region string
}

var _ batch.QueueClient = (*QueueService)(nil)

// NewQueueService is constructor of QueueService. region is used when queue
// ARN does not have region part. A new cache is created if cache is nil.
func NewQueueService(newSQS adaptor.SQSClientFactory, cache QueueURLCache, region string) *QueueService {
	if cache == nil {
		cache = NewQueueURLCache(DefaultQueueURLCacheSize, DefaultQueueURLCacheTTL)
	}

	return &QueueService{
		newSQS: newSQS,
		cache:  cache,
		region: region,
	}
}

type queueARN struct {
	region    string
	accountID string
	name      string
}

// parseQueueARN parses arn:aws:sqs:<region>:<account>:<name>. Only account and
// name are required.
func parseQueueARN(arn, defaultRegion string) (*queueARN, error) {
	parts := strings.Split(arn, ":")
	if len(parts) < 2 {
		return nil, errors.Errorf("Not enough ':' in queue ARN: %s", arn)
	}

	q := &queueARN{
		region:    defaultRegion,
		accountID: parts[len(parts)-2],
		name:      parts[len(parts)-1],
	}
	if q.accountID == "" || q.name == "" {
		return nil, errors.Errorf("Empty account ID or queue name in queue ARN: %s", arn)
	}
	if len(parts) >= 6 && parts[3] != "" {
		q.region = parts[3]
	}

	return q, nil
}

// ResolveURL returns queue URL of the queue ARN. Malformed ARN and
// non-existing queue are logged and resolved to absent. Only found URLs are
// cached.
func (x *QueueService) ResolveURL(ctx context.Context, arn string) (string, bool) {
	if url, ok := x.cache.Get(arn); ok {
		return url, true
	}

	log := logger.WithField("queue_arn", arn)

	q, err := parseQueueARN(arn, x.region)
	if err != nil {
		log.WithError(err).Warn("Failed to parse Queue ARN, ignored")
		return "", false
	}

	client := x.newSQS(q.region)
	output, err := client.GetQueueUrlWithContext(ctx, &sqs.GetQueueUrlInput{
		QueueName:              aws.String(q.name),
		QueueOwnerAWSAccountId: aws.String(q.accountID),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == sqs.ErrCodeQueueDoesNotExist {
			log.WithError(err).Warn("Queue does not exist, ignored")
		} else {
			log.WithError(err).Error("Failed to get queue URL, ignored")
		}
		return "", false
	}

	url := aws.StringValue(output.QueueUrl)
	if url == "" {
		log.Warn("Empty queue URL in response, ignored")
		return "", false
	}

	x.cache.Add(arn, url)
	log.WithField("queue_url", url).Debug("Resolved queue URL")
	return url, true
}

func (x *QueueService) resolve(ctx context.Context, arn string) (string, adaptor.SQSClient, error) {
	url, ok := x.ResolveURL(ctx, arn)
	if !ok {
		return "", nil, errors.Wrapf(ErrQueueNotResolved, "arn: %s", arn)
	}

	region := x.region
	if q, err := parseQueueARN(arn, x.region); err == nil {
		region = q.region
	}

	return url, x.newSQS(region), nil
}

// DeleteMessage deletes a message from the queue identified by ARN. An
// invalid receipt handle is returned as batch.ErrReceiptHandleInvalid.
func (x *QueueService) DeleteMessage(ctx context.Context, arn, receiptHandle string) error {
	if receiptHandle == "" {
		return errors.Wrap(batch.ErrMalformedRecord, "Empty receipt handle")
	}

	url, client, err := x.resolve(ctx, arn)
	if err != nil {
		return err
	}

	_, err = client.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(url),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == sqs.ErrCodeReceiptHandleIsInvalid {
			return errors.Wrap(batch.ErrReceiptHandleInvalid, aerr.Message())
		}
		return errors.Wrapf(err, "Fail to delete message from %s", url)
	}

	return nil
}

// ChangeVisibility changes visibility timeout of an in-flight message. Any
// error is logged and false is returned.
func (x *QueueService) ChangeVisibility(ctx context.Context, arn, receiptHandle string, timeout time.Duration) bool {
	log := logger.WithFields(logrus.Fields{
		"queue_arn": arn,
		"timeout":   timeout,
	})

	url, client, err := x.resolve(ctx, arn)
	if err != nil {
		log.WithError(err).Warn("Failed to change message visibility, ignored")
		return false
	}

	_, err = client.ChangeMessageVisibilityWithContext(ctx, &sqs.ChangeMessageVisibilityInput{
		QueueUrl:          aws.String(url),
		ReceiptHandle:     aws.String(receiptHandle),
		VisibilityTimeout: aws.Int64(int64(timeout / time.Second)),
	})
	if err != nil {
		log.WithError(err).Warn("Failed to change message visibility, ignored")
		return false
	}

	return true
}

// SendMessage is wrapper of sqs:SendMessage of AWS. msg is encoded to JSON.
func (x *QueueService) SendMessage(ctx context.Context, url string, msg interface{}) (string, error) {
	// QueueURL sample: https://sqs.eu-west-2.amazonaws.com/
	urlParts := strings.Split(url, "/")
	if len(urlParts) < 3 {
		logger.WithField("url", url).Error("Failed to parse URL (not enough slash)")
		return "", errors.New("Invalid SQS Queue URL")
	}
	domainParts := strings.Split(urlParts[2], ".")
	if len(domainParts) != 4 {
		logger.WithField("url", url).Error("Failed to parse URL (not enough dot in FQDN")
		return "", errors.New("Invalid SQS Queue URL")
	}

	client := x.newSQS(domainParts[1])

	raw, err := json.Marshal(msg)
	if err != nil {
		return "", errors.Wrapf(err, "Fail to marshal message: %v", msg)
	}

	input := sqs.SendMessageInput{
		QueueUrl:    aws.String(url),
		MessageBody: aws.String(string(raw)),
	}
	resp, err := client.SendMessageWithContext(ctx, &input)
	if err != nil {
		return "", errors.Wrapf(err, "Fail to send SQS message: %v", input)
	}

	logger.WithField("resp", resp).Trace("Sent SQS message")

	return aws.StringValue(resp.MessageId), nil
}
