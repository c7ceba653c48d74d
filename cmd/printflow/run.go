package main

import (
	"context"
	"fmt"

	"go.uber.org/fx"
)

// run blocks until either a termination signal arrives or the fx app shuts
// itself down, then stops the app with a fresh context so late cleanup is not
// cut short by the already-cancelled signal context.
func run(ctx context.Context, app *fx.App) error {
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start application: %w", err)
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	if err := app.Stop(context.Background()); err != nil {
		return fmt.Errorf("stop application: %w", err)
	}
	return nil
}
