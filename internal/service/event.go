package service

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/eventbridge"
	"github.com/goccy/go-json"
	"github.com/m-mizutani/lakefront/internal/adaptor"
	"github.com/sirupsen/logrus"
)

const (
	DefaultEventBus        = "default"
	DefaultEventDetailType = "event"
	// sourcePlaceholder replaces source starting with "aws." that is reserved by AWS
	sourcePlaceholder = "application"

	// PutEvents accepts up to 10 entries
	maxEventBridgeEntries = 10
)

// EventTarget specifies where and how events are put
type EventTarget struct {
	Bus        string
	Source     string
	DetailType string
}

func (x EventTarget) normalize() EventTarget {
	if x.Bus == "" {
		x.Bus = DefaultEventBus
	}
	if x.DetailType == "" {
		x.DetailType = DefaultEventDetailType
	}
	if x.Source == "" || strings.HasPrefix(x.Source, "aws.") {
		x.Source = sourcePlaceholder
	}
	return x
}

// EventService is accessor to EventBridge
type EventService struct {
	newEventBridge adaptor.EventBridgeClientFactory
	region         string
}

// NewEventService is constructor of EventService
func NewEventService(newEventBridge adaptor.EventBridgeClientFactory, region string) *EventService {
	return &EventService{
		newEventBridge: newEventBridge,
		region:         region,
	}
}

// Put sends details to the event bus. Details that can not be encoded to JSON
// are logged and skipped. It returns false if PutEvents fails.
func (x *EventService) Put(ctx context.Context, target EventTarget, details ...interface{}) bool {
	target = target.normalize()
	log := logger.WithFields(logrus.Fields{
		"event_bus_name": target.Bus,
		"detail_type":    target.DetailType,
		"source":         target.Source,
	})

	var entries []*eventbridge.PutEventsRequestEntry
	for _, detail := range details {
		raw, err := json.Marshal(detail)
		if err != nil {
			log.WithError(err).WithField("detail", detail).Error("Object is not JSON serializable, ignored")
			continue
		}

		entries = append(entries, &eventbridge.PutEventsRequestEntry{
			EventBusName: aws.String(target.Bus),
			Source:       aws.String(target.Source),
			DetailType:   aws.String(target.DetailType),
			Detail:       aws.String(string(raw)),
		})
	}

	if len(entries) == 0 {
		return true
	}

	client := x.newEventBridge(x.region)
	for s := 0; s < len(entries); s += maxEventBridgeEntries {
		end := len(entries)
		if s+maxEventBridgeEntries < len(entries) {
			end = s + maxEventBridgeEntries
		}

		output, err := client.PutEventsWithContext(ctx, &eventbridge.PutEventsInput{
			Entries: entries[s:end],
		})
		if err != nil {
			log.WithError(err).Error("Failed to put events to EventBridge")
			return false
		}
		if n := aws.Int64Value(output.FailedEntryCount); n > 0 {
			log.WithFields(logrus.Fields{
				"failed":  n,
				"entries": output.Entries,
			}).Error("Some events are rejected by EventBridge")
			return false
		}
	}

	log.WithField("count", len(entries)).Debug("Put events to EventBridge")
	return true
}
