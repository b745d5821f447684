package mock

import (
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/m-mizutani/lakefront/internal/adaptor"
)

// SQSClient is mock of AWS SQS SDK. All methods are safe for concurrent use.
type SQSClient struct {
	mutex   sync.Mutex
	queues  map[string]string
	Regions []string

	GetQueueURLCount int
	SendInput        []*sqs.SendMessageInput
	DeleteInput      []*sqs.DeleteMessageInput
	VisibilityInput  []*sqs.ChangeMessageVisibilityInput

	// DeleteErrors is returned by DeleteMessage for the receipt handle
	DeleteErrors map[string]error
	// SendErrors is returned by n-th (0 origin) SendMessage call
	SendErrors map[int]error
	sendCount  int
}

// NewSQSClient creates mock SQS client
func NewSQSClient() *SQSClient {
	return &SQSClient{
		queues:       make(map[string]string),
		DeleteErrors: make(map[string]error),
		SendErrors:   make(map[int]error),
	}
}

// Factory returns SQSClientFactory that always provides the mock itself
func (x *SQSClient) Factory() adaptor.SQSClientFactory {
	return func(region string) adaptor.SQSClient {
		x.mutex.Lock()
		defer x.mutex.Unlock()
		x.Regions = append(x.Regions, region)
		return x
	}
}

func queueKey(account, name string) string {
	return account + "/" + name
}

// AddQueue registers a queue and returns the URL
func (x *SQSClient) AddQueue(region, account, name string) string {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	url := fmt.Sprintf("https://sqs.%s.amazonaws.com/%s/%s", region, account, name)
	x.queues[queueKey(account, name)] = url
	return url
}

func (x *SQSClient) GetQueueUrlWithContext(ctx aws.Context, input *sqs.GetQueueUrlInput, opts ...request.Option) (*sqs.GetQueueUrlOutput, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	x.GetQueueURLCount++
	url, ok := x.queues[queueKey(aws.StringValue(input.QueueOwnerAWSAccountId), aws.StringValue(input.QueueName))]
	if !ok {
		return nil, awserr.New(sqs.ErrCodeQueueDoesNotExist, "The specified queue does not exist", nil)
	}

	return &sqs.GetQueueUrlOutput{QueueUrl: aws.String(url)}, nil
}

func (x *SQSClient) DeleteMessageWithContext(ctx aws.Context, input *sqs.DeleteMessageInput, opts ...request.Option) (*sqs.DeleteMessageOutput, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	if err, ok := x.DeleteErrors[aws.StringValue(input.ReceiptHandle)]; ok {
		return nil, err
	}

	x.DeleteInput = append(x.DeleteInput, input)
	return &sqs.DeleteMessageOutput{}, nil
}

func (x *SQSClient) ChangeMessageVisibilityWithContext(ctx aws.Context, input *sqs.ChangeMessageVisibilityInput, opts ...request.Option) (*sqs.ChangeMessageVisibilityOutput, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	x.VisibilityInput = append(x.VisibilityInput, input)
	return &sqs.ChangeMessageVisibilityOutput{}, nil
}

// SendMessageWithContext of mock stores SendMessage input or returns SendErrors
func (x *SQSClient) SendMessageWithContext(ctx aws.Context, input *sqs.SendMessageInput, opts ...request.Option) (*sqs.SendMessageOutput, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	n := x.sendCount
	x.sendCount++
	if err, ok := x.SendErrors[n]; ok {
		return nil, err
	}

	x.SendInput = append(x.SendInput, input)
	return &sqs.SendMessageOutput{MessageId: aws.String(fmt.Sprintf("msg-%d", len(x.SendInput)))}, nil
}
