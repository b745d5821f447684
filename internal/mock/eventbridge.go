package mock

import (
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/eventbridge"
	"github.com/m-mizutani/lakefront/internal/adaptor"
)

// EventBridgeClient is mock of AWS EventBridge SDK
type EventBridgeClient struct {
	mutex   sync.Mutex
	Input   []*eventbridge.PutEventsInput
	Entries []*eventbridge.PutEventsRequestEntry

	// FailEntries makes every entry rejected
	FailEntries bool
}

// NewEventBridgeClient creates mock EventBridge client
func NewEventBridgeClient() *EventBridgeClient {
	return &EventBridgeClient{}
}

// Factory returns EventBridgeClientFactory that always provides the mock itself
func (x *EventBridgeClient) Factory() adaptor.EventBridgeClientFactory {
	return func(region string) adaptor.EventBridgeClient { return x }
}

func (x *EventBridgeClient) PutEventsWithContext(ctx aws.Context, input *eventbridge.PutEventsInput, opts ...request.Option) (*eventbridge.PutEventsOutput, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	x.Input = append(x.Input, input)
	output := &eventbridge.PutEventsOutput{FailedEntryCount: aws.Int64(0)}

	for _, entry := range input.Entries {
		if x.FailEntries {
			output.Entries = append(output.Entries, &eventbridge.PutEventsResultEntry{
				ErrorCode:    aws.String("InternalFailure"),
				ErrorMessage: aws.String("mock failure"),
			})
			continue
		}

		x.Entries = append(x.Entries, entry)
		output.Entries = append(output.Entries, &eventbridge.PutEventsResultEntry{
			EventId: aws.String("event-id"),
		})
	}
	if x.FailEntries {
		output.FailedEntryCount = aws.Int64(int64(len(input.Entries)))
	}

	return output, nil
}
