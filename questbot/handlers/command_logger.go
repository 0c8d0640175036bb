package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/handler"
)

// WrapWithLogging wraps a command handler with start/completion logging
// and a watchdog. Handlers that run long flows respond first and spawn
// goroutines, so the watchdog only guards the interaction response.
func WrapWithLogging(name string, h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		start := time.Now()

		slog.Info("Command started",
			slog.String("type", "cmd"),
			slog.String("name", name),
			slog.String("user_id", e.User().ID.String()),
			slog.String("user_name", e.User().Username),
		)

		done := make(chan error, 1)
		go func() {
			done <- h(e)
		}()

		select {
		case err := <-done:
			logOutcome("Command", name, e.User().Username, time.Since(start), err)
			return err
		case <-time.After(10 * time.Second):
			slog.Error("Command timed out",
				slog.String("type", "cmd"),
				slog.String("name", name),
				slog.String("user_name", e.User().Username),
				slog.String("status", "timeout"),
			)
			return fmt.Errorf("command timed out after 10 seconds")
		}
	}
}

// WrapComponentWithLogging is WrapWithLogging for component handlers.
func WrapComponentWithLogging(name string, h handler.ComponentHandler) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		start := time.Now()

		slog.Info("Component interaction started",
			slog.String("type", "cmd"),
			slog.String("name", name),
			slog.String("user_id", e.User().ID.String()),
			slog.String("user_name", e.User().Username),
		)

		done := make(chan error, 1)
		go func() {
			done <- h(e)
		}()

		select {
		case err := <-done:
			logOutcome("Component interaction", name, e.User().Username, time.Since(start), err)
			return err
		case <-time.After(10 * time.Second):
			slog.Error("Component interaction timed out",
				slog.String("type", "cmd"),
				slog.String("name", name),
				slog.String("user_name", e.User().Username),
				slog.String("status", "timeout"),
			)
			return fmt.Errorf("component interaction timed out after 10 seconds")
		}
	}
}

// WrapModalWithLogging is WrapWithLogging for modal submissions.
func WrapModalWithLogging(name string, h handler.ModalHandler) handler.ModalHandler {
	return func(e *handler.ModalEvent) error {
		start := time.Now()
		err := h(e)
		logOutcome("Modal", name, e.User().Username, time.Since(start), err)
		return err
	}
}

func logOutcome(kind, name, userName string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "cmd"),
		slog.String("name", name),
		slog.String("user_name", userName),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error(kind+" failed", append(attrs,
			slog.Any("error", err),
			slog.String("status", "failed"),
		)...)
		return
	}
	if duration > 2*time.Second {
		slog.Warn(kind+" executed slowly", append(attrs,
			slog.String("status", "slow"),
		)...)
		return
	}
	slog.Info(kind+" completed", append(attrs,
		slog.String("status", "success"),
	)...)
}
