package main

import (
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

type awsEvent struct {
	Records []*awsEventRecord `json:"Records"`
}

// SNS uses EventSource and SQS uses eventSource. Both match by case
// insensitive key matching of json.Unmarshal.
type awsEventRecord struct {
	EventSource string `json:"eventSource"`
	Body        string `json:"body"`
	SNS         *struct {
		Message string `json:"Message"`
	} `json:"Sns"`
}

// originalMessages extracts messages that the failed function received. If
// payload is a SQS or SNS event, each record is unwrapped. Otherwise payload
// itself is the original message.
func originalMessages(payload []byte) ([][]byte, error) {
	var event awsEvent
	if err := json.Unmarshal(payload, &event); err != nil || len(event.Records) == 0 {
		return [][]byte{payload}, nil
	}

	var messages [][]byte
	for i, record := range event.Records {
		var msg string
		switch record.EventSource {
		case "aws:sqs":
			msg = record.Body
		case "aws:sns":
			if record.SNS != nil {
				msg = record.SNS.Message
			}
		default:
			return [][]byte{payload}, nil
		}

		if !json.Valid([]byte(msg)) {
			return nil, errors.Errorf("message of record %d is not JSON", i)
		}
		messages = append(messages, []byte(msg))
	}

	return messages, nil
}
