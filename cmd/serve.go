package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/domo/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the dashboard HTTP server and the sync loop until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	var auth *server.OAuthHandler
	if st.session != nil {
		auth = server.NewOAuthHandler(st.session, r.logger)
	} else {
		r.logger.Info("no spotify credentials configured, /auth routes disabled")
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Address()
	}

	srv := server.New(server.Options{
		Addr:    addr,
		Facade:  st.facade,
		Home:    st.home,
		Loop:    st.loop,
		Catalog: st.catalog,
		Auth:    auth,
		Assets:  st.fetcher,
		Logger:  r.logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		st.loop.Run(ctx)
	}()

	err = srv.Run(ctx)
	stop()
	<-loopDone
	return err
}
