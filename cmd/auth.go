package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/domo/internal/server"
	"github.com/desertthunder/domo/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the browser authorization flow: it serves the callback
// routes, opens the consent page, and waits for the exchanged token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	if st.session == nil {
		return fmt.Errorf("%w: set credentials.spotify.client_id in config.toml or DOMO_SPOTIFY_CLIENT_ID", shared.ErrMissingCredentials)
	}

	auth := server.NewOAuthHandler(st.session, r.logger)
	srv := server.New(server.Options{
		Addr:    r.config.Server.Address(),
		Facade:  st.facade,
		Home:    st.home,
		Loop:    st.loop,
		Catalog: st.catalog,
		Auth:    auth,
		Assets:  st.fetcher,
		Logger:  r.logger,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	loginURL := fmt.Sprintf("http://%s/auth/login", r.config.Server.Address())
	if cmd.Bool("no-browser") {
		r.writePlain("Open %s to authorize\n", loginURL)
	} else {
		r.writePlain("Opening %s in your browser...\n", loginURL)
		if err := shared.OpenBrowser(loginURL); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
			r.writePlain("Open %s to authorize\n", loginURL)
		}
	}

	timeout := time.Duration(cmd.Int("timeout")) * time.Second

	select {
	case result := <-auth.Result():
		cancel()
		<-errCh
		if err := result.Error(); err != nil {
			return err
		}
		r.writePlain("✓ Authentication successful\n")
		if result.Token != nil && !result.Token.Expiry.IsZero() {
			r.writePlain("Token expires at %s\n", result.Token.Expiry.Format(time.RFC1123))
		}
		return nil
	case <-time.After(timeout):
		cancel()
		<-errCh
		return fmt.Errorf("%w: no callback received after %s", shared.ErrTimeout, timeout)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to run callback server: %w", err)
		}
		return fmt.Errorf("%w: callback server exited", shared.ErrAuthFailed)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AuthStatus reports whether a usable token is stored.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	if st.session == nil {
		r.writePlain("✗ No credentials configured\n")
		r.writePlain("Set DOMO_SPOTIFY_CLIENT_ID or credentials.spotify.client_id in config.toml\n")
		return nil
	}

	if st.session.HasValid() {
		token, err := st.session.Token()
		if err != nil {
			return err
		}
		r.writePlain("✓ Authenticated\n")
		if !token.Expiry.IsZero() {
			r.writePlain("Token expires at %s\n", token.Expiry.Format(time.RFC1123))
		}
		return nil
	}

	r.writePlain("✗ Not authenticated\n")
	r.writePlain("Run 'domo auth login' to connect your Spotify account\n")
	return nil
}

// AuthLogout clears the stored token and session state.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	if st.session != nil {
		st.session.Invalidate()
	} else if err := st.repos.Sessions.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	r.logger.Info("session cleared")
	return r.writePlain("✓ Session cleared\n")
}
