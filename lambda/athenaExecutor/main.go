package main

import (
	"context"

	"github.com/m-mizutani/lakefront/pkg/emitter"
	"github.com/m-mizutani/lakefront/pkg/handler"
)

var logger = handler.Logger

func main() {
	handler.StartLambda(Handler)
}

// Handler is exported for testing
func Handler(ctx context.Context, args handler.Arguments) (interface{}, error) {
	emit := emitter.FromResult(args.EventService(), args.EventEmitter())
	return args.BatchResolver(executeQuery, emit).Invoke(ctx, args.Event)
}
