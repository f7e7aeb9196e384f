package goroutine

import (
	"context"
	"log"
	"runtime/debug"

	"github.com/evseenkov/swapwear-backend/internal/logger"
)

// SafeGo запускает горутину с перехватом panic.
// Используется для побочных задач (например, запись уведомлений),
// падение которых не должно ронять процесс.
func SafeGo(fn func()) {
	go func() {
		defer recoverPanic()
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и перехватом panic.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer recoverPanic()
		fn(ctx)
	}()
}

func recoverPanic() {
	r := recover()
	if r == nil {
		return
	}
	if logger.Log != nil {
		logger.Log.Errorf("goroutine: panic: %v\n%s", r, debug.Stack())
		return
	}
	log.Printf("goroutine: panic: %v\n%s", r, debug.Stack())
}
