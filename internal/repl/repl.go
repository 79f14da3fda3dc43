package repl

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"podplay/internal/app"
)

// Run starts the interactive REPL session. It returns when the user exits or
// the context is cancelled.
func Run(ctx context.Context, application *app.App) error {
	program := tea.NewProgram(newModel(ctx, application), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
