package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/shared"
	"github.com/desertthunder/vibesync/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for room pairing.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/vibesync-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	_, loggedIn := r.store.Load()

	model := ui.NewModel(ctx, ui.Options{
		Machine:  r.machine,
		LoggedIn: loggedIn,
		Profile: func(ctx context.Context) (*models.Profile, error) {
			return r.api.Profile(ctx)
		},
		Login: func(ctx context.Context) error {
			_, err := r.login(ctx, true, io.Discard)
			return err
		},
		Logout: r.store.Clear,
		Homes:  r.nav.Homes(),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
