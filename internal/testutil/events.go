package testutil

import (
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
)

// TestQueueARN is source queue of events built by EncapBySQS
const TestQueueARN = "arn:aws:sqs:ap-northeast-1:123456789012:test-queue"

// EncapBySQS encapslates data by events.SQSEvent and returns it as raw Lambda
// event. Each data becomes one record with message ID "msg-<i>" and receipt
// handle "handle-<i>". A string data is used as body as is.
func EncapBySQS(data ...interface{}) json.RawMessage {
	var event events.SQSEvent

	for i, d := range data {
		body, ok := d.(string)
		if !ok {
			raw, err := json.Marshal(d)
			if err != nil {
				log.Fatalf("Can not marshal: %+v: %v", err, d)
			}
			body = string(raw)
		}

		event.Records = append(event.Records, events.SQSMessage{
			MessageId:      fmt.Sprintf("msg-%d", i),
			ReceiptHandle:  fmt.Sprintf("handle-%d", i),
			Body:           body,
			EventSource:    "aws:sqs",
			EventSourceARN: TestQueueARN,
			AWSRegion:      "ap-northeast-1",
			Attributes: map[string]string{
				"ApproximateReceiveCount": "1",
			},
		})
	}

	raw, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Can not marshal SQS event: %v", err)
	}
	return raw
}
