package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/domo/internal/shared"
	"github.com/desertthunder/domo/internal/ui"
	"github.com/urfave/cli/v3"
)

// Dash launches the interactive terminal dashboard. The sync loop runs in
// the background for the lifetime of the program; quitting the dashboard
// stops it.
func (r *Runner) Dash(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with dashboard rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.setLogger(fileLogger)

	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		st.loop.Run(ctx)
	}()

	model := ui.NewModel(ctx, ui.Options{
		Facade:  st.facade,
		Engine:  st.engine,
		Catalog: st.catalog,
		Home:    st.home,
		Loop:    st.loop,
	})
	p := tea.NewProgram(model)

	_, runErr := p.Run()
	cancel()
	<-loopDone

	if runErr != nil {
		return fmt.Errorf("error running dashboard: %w", runErr)
	}
	return nil
}
