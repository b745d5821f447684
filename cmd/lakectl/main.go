package main

import (
	"os"

	"github.com/m-mizutani/lakefront/internal"
	cli "github.com/urfave/cli/v2"
)

var logger = internal.Logger

func main() {
	var args arguments

	app := &cli.App{
		Name:  "lakectl",
		Usage: "CLI utility of lakefront",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "stack-name",
				Aliases:     []string{"s"},
				Usage:       "StackName of CloudFormation",
				EnvVars:     []string{"LAKEFRONT_STACK_NAME"},
				Destination: &args.StackName,
			},
			&cli.StringFlag{
				Name:        "region",
				Aliases:     []string{"r"},
				Usage:       "AWS region",
				Required:    true,
				EnvVars:     []string{"AWS_REGION"},
				Destination: &args.Region,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Aliases:     []string{"l"},
				Usage:       "Log level [trace|debug|info|warn|error]",
				Value:       "info",
				Destination: &args.LogLevel,
			},
		},
		Before: func(c *cli.Context) error {
			internal.SetLogLevel(args.LogLevel)
			return nil
		},
		Commands: []*cli.Command{
			resourcesCommand(&args),
			queryCommand(&args),
			queueURLCommand(&args),
			sendCommand(&args),
			layerCommand(&args),
			failuresCommand(&args),
			serveCommand(&args),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.WithError(err).Fatal("Abort")
	}
}
