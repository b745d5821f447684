package handler

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/goccy/go-json"
	"github.com/m-mizutani/lakefront/internal"
	"github.com/m-mizutani/lakefront/internal/service"
	"github.com/m-mizutani/lakefront/pkg/batch"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Logger is common logger gateway
var Logger = internal.Logger

// Handler has main logic of the lambda function
type Handler func(ctx context.Context, args Arguments) (interface{}, error)

// process wide state shared by invocations in the same container
var (
	processOnce  sync.Once
	processCache service.QueueURLCache
	processMeta  *service.MetaService
)

// StartLambda initialize AWS Lambda and invokes handler
func StartLambda(handler Handler) {
	internal.SetupLambdaLogger("")

	lambda.Start(func(ctx context.Context, event json.RawMessage) (interface{}, error) {
		defer internal.FlushError()

		var args Arguments
		if err := args.BindEnvVars(); err != nil {
			internal.HandleError(err)
			return nil, err
		}

		internal.SetLogLevel(args.LogLevel)
		internal.InitErrorHandler(args.SentryDSN, args.SentryEnv)

		processOnce.Do(func() {
			processCache = service.NewQueueURLCache(args.QueueURLCacheSize, args.QueueURLCacheTTL)
			processMeta = args.MetaService()
		})
		args.URLCache = processCache
		args.meta = processMeta

		return Run(ctx, args, event, handler)
	})
}

// Run invokes handler with the event. Partial batch failure is not reported
// as error to Sentry because failed records are already logged.
func Run(ctx context.Context, args Arguments, event json.RawMessage, handler Handler) (interface{}, error) {
	args.Event = event
	Logger.WithFields(logrus.Fields{"args": args, "event": string(event)}).Debug("Start handler")

	resp, err := handler(ctx, args)
	if err != nil {
		if errors.Is(err, batch.ErrPartialBatchFailure) {
			Logger.WithError(err).Warn("Batch partially failed")
			return nil, err
		}

		Logger.WithFields(logrus.Fields{"args": args, "event": string(event)}).Error("Failed Handler")
		err = errors.Wrap(err, "Failed Handler")
		internal.HandleError(err)
		return nil, err
	}

	return resp, nil
}
