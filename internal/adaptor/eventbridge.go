package adaptor

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/eventbridge"
)

// EventBridgeClientFactory is interface EventBridgeClient constructor
type EventBridgeClientFactory func(region string) EventBridgeClient

// EventBridgeClient is interface of AWS EventBridge SDK
type EventBridgeClient interface {
	PutEventsWithContext(aws.Context, *eventbridge.PutEventsInput, ...request.Option) (*eventbridge.PutEventsOutput, error)
}

var _ EventBridgeClient = (*eventbridge.EventBridge)(nil)

// NewEventBridgeClient creates actual AWS EventBridge SDK client
func NewEventBridgeClient(region string) EventBridgeClient {
	return eventbridge.New(newSession(region))
}
