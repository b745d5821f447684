package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/m-mizutani/lakefront/pkg/api"
	"github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"
)

type serveArguments struct {
	addr      string
	port      int
	rawBucket string
	queueURL  string
}

func serveCommand(args *arguments) *cli.Command {
	var params serveArguments

	return &cli.Command{
		Name:  "serve",
		Usage: "Run ingest API local server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Aliases:     []string{"a"},
				Value:       "127.0.0.1",
				Usage:       "Bind address",
				Destination: &params.addr,
			},
			&cli.IntFlag{
				Name:        "port",
				Aliases:     []string{"p"},
				Value:       10080,
				Usage:       "Bind port number",
				Destination: &params.port,
			},
			&cli.StringFlag{
				Name:        "raw-bucket",
				Usage:       "S3 bucket to save raw records",
				Required:    true,
				EnvVars:     []string{"RAW_BUCKET_NAME"},
				Destination: &params.rawBucket,
			},
			&cli.StringFlag{
				Name:        "queue-url",
				Usage:       "SQS queue URL for ingestObject",
				Required:    true,
				EnvVars:     []string{"INGEST_QUEUE_URL"},
				Destination: &params.queueURL,
			},
		},

		Action: func(c *cli.Context) error {
			logger.WithFields(logrus.Fields{
				"args":   args,
				"params": params,
			}).Info("Start API server")

			hargs := args.handlerArgs()
			hargs.RawBucketName = params.rawBucket
			hargs.IngestQueueURL = params.queueURL

			r := gin.Default()
			api.SetupRoute(r.Group(""), hargs)

			bindAddr := fmt.Sprintf("%s:%d", params.addr, params.port)
			return r.Run(bindAddr)
		},
	}
}
