package main

import (
	"context"
	"testing"
)

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	t.Run("starts not cancelled", func(t *testing.T) {
		t.Parallel()
		ctx, stop := notifyContext(context.Background())
		defer stop()

		select {
		case <-ctx.Done():
			t.Fatal("context should not be cancelled initially")
		default:
		}
	})

	t.Run("stop cancels the context", func(t *testing.T) {
		t.Parallel()
		ctx, stop := notifyContext(context.Background())
		stop()

		select {
		case <-ctx.Done():
		default:
			t.Fatal("context should be cancelled after stop()")
		}
	})

	t.Run("inherits parent cancellation", func(t *testing.T) {
		t.Parallel()
		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := notifyContext(parent)
		defer stop()

		cancel()
		select {
		case <-ctx.Done():
		default:
			t.Fatal("context should be cancelled when the parent is")
		}
	})
}
