package main

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	cli "github.com/urfave/cli/v2"
)

func queueURLCommand(args *arguments) *cli.Command {
	return &cli.Command{
		Name:      "queue-url",
		Usage:     "Resolve SQS queue URL from queue ARN",
		ArgsUsage: "QUEUE_ARN",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("QUEUE_ARN is required")
			}

			url, ok := args.handlerArgs().QueueService().ResolveURL(c.Context, c.Args().First())
			if !ok {
				return errors.Errorf("Can not resolve queue URL: %s", c.Args().First())
			}
			printResult(url)
			return nil
		},
	}
}

type sendArguments struct {
	queueURL string
	queue    string
	body     string
}

func sendCommand(args *arguments) *cli.Command {
	var sendArgs sendArguments

	return &cli.Command{
		Name:  "send",
		Usage: "Send a JSON message to SQS queue",
		Action: func(c *cli.Context) error {
			return sendAction(c.Context, *args, sendArgs)
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "queue-url",
				Aliases:     []string{"u"},
				Usage:       "SQS queue URL",
				Destination: &sendArgs.queueURL,
			},
			&cli.StringFlag{
				Name:        "queue",
				Aliases:     []string{"q"},
				Usage:       "Logical resource ID of the queue in the stack (requires --stack-name)",
				Destination: &sendArgs.queue,
			},
			&cli.StringFlag{
				Name:        "body",
				Aliases:     []string{"b"},
				Usage:       "Message body (JSON)",
				Required:    true,
				Destination: &sendArgs.body,
			},
		},
	}
}

func sendAction(ctx context.Context, args arguments, sendArgs sendArguments) error {
	url := sendArgs.queueURL
	if url == "" {
		if sendArgs.queue == "" {
			return errors.New("--queue-url or --queue is required")
		}

		id, err := args.physicalID(sendArgs.queue)
		if err != nil {
			return err
		}
		url = id
	}

	if !json.Valid([]byte(sendArgs.body)) {
		return errors.Errorf("Body is not JSON: %s", sendArgs.body)
	}

	msgID, err := args.handlerArgs().QueueService().SendMessage(ctx, url, json.RawMessage(sendArgs.body))
	if err != nil {
		return err
	}

	logger.WithField("message_id", msgID).Info("Sent message")
	return nil
}
