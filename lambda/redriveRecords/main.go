package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	"github.com/m-mizutani/lakefront/pkg/batch"
	"github.com/m-mizutani/lakefront/pkg/handler"
	"github.com/m-mizutani/lakefront/pkg/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger = handler.Logger

func main() {
	handler.StartLambda(Handler)
}

// Handler is exported for testing
func Handler(ctx context.Context, args handler.Arguments) (interface{}, error) {
	return args.BatchResolver(redrive).Invoke(ctx, args.Event)
}

func attribute(attrs map[string]events.SQSMessageAttribute, name string) string {
	if attr, ok := attrs[name]; ok && attr.StringValue != nil {
		return *attr.StringValue
	}
	return ""
}

// redrive sends original messages of a failed event to REDRIVE_QUEUE_URL.
// Sending is at least once: when a send fails, messages already sent in the
// record are sent again on redelivery. The error tells how many were sent.
func redrive(ctx context.Context, args *handler.Arguments, record *batch.Record, prior batch.Results) (interface{}, error) {
	log := logger.WithField("index", record.Index)
	if record.SQS != nil {
		log = log.WithFields(logrus.Fields{
			"ErrorCode":    attribute(record.SQS.MessageAttributes, "ErrorCode"),
			"ErrorMessage": attribute(record.SQS.MessageAttributes, "ErrorMessage"),
			"RequestID":    attribute(record.SQS.MessageAttributes, "RequestID"),
		})
	}
	log.WithField("event", string(record.Payload)).Error("Lambda Error")

	messages, err := originalMessages(record.Payload)
	if err != nil {
		return nil, errors.Wrap(batch.ErrMalformedRecord, err.Error())
	}

	result := &models.RedriveResult{Found: len(messages)}
	if args.RedriveQueueURL == "" {
		log.WithField("messages", len(messages)).Warn("REDRIVE_QUEUE_URL is not set, messages are not redriven")
		return result, nil
	}

	queue := args.QueueService()
	for _, msg := range messages {
		if _, err := queue.SendMessage(ctx, args.RedriveQueueURL, json.RawMessage(msg)); err != nil {
			log.WithField("sent", result.Sent).Warn("Redrive stopped, sent messages will be sent again on retry")
			return nil, errors.Wrapf(err, "Redrive stopped after %d of %d messages", result.Sent, result.Found)
		}
		result.Sent++
	}

	log.WithField("sent", result.Sent).Info("Redrove messages")
	return result, nil
}
