package batch

import (
	"context"

	"github.com/pkg/errors"
)

// Middleware decorates RecordProcessor
type Middleware func(RecordProcessor) RecordProcessor

// Chain wraps proc by mws. mws[0] is the outermost.
func Chain(proc RecordProcessor, mws ...Middleware) RecordProcessor {
	if proc == nil {
		return nil
	}

	for i := len(mws) - 1; i >= 0; i-- {
		proc = mws[i](proc)
	}
	return proc
}

// Hooks combines failed-record hooks. Every hook runs even if a former one
// fails, and the first error is returned.
func Hooks(hooks ...FailedRecordHook) FailedRecordHook {
	return func(ctx context.Context, record *Record, prior Results) error {
		var first error
		for i, hook := range hooks {
			if hook == nil {
				continue
			}

			if err := safeHook(ctx, hook, record, prior); err != nil {
				logger.WithError(err).WithField("hook", i).Warn("Failed-record hook failed")
				if first == nil {
					first = errors.Wrapf(err, "failed-record hook %d", i)
				}
			}
		}
		return first
	}
}
