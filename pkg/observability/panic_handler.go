package observability

import (
	"fmt"
	"runtime/debug"
)

// RecoverToError converts a panic in a goroutine into an error assigned to *err,
// so errgroup members report panics instead of crashing the process:
//
//	g.Go(func() (err error) {
//	    defer observability.RecoverToError(logger, "api server", &err)
//	    ...
//	})
func RecoverToError(logger *Logger, where string, err *error) {
	if r := recover(); r != nil {
		logPanic(logger, where, r)
		if err != nil {
			*err = fmt.Errorf("panic in %s: %v", where, r)
		}
	}
}

func logPanic(logger *Logger, where string, r interface{}) {
	if logger == nil {
		return
	}
	logger.WithFields(map[string]interface{}{
		"panic":   fmt.Sprint(r),
		"stack":   string(debug.Stack()),
		"context": where,
	}).Error("PANIC recovered")
}
