package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/domo/internal/formatter"
	"github.com/desertthunder/domo/internal/music"
	"github.com/desertthunder/domo/internal/shared"
	"github.com/urfave/cli/v3"
)

// selectService points the facade at the requested service before a
// transport command runs. Local is the facade's starting state, so only a
// remote target needs a switch.
func (r *Runner) selectService(ctx context.Context, st *stack, name string) error {
	svc := music.Service(name)
	if svc == st.facade.Selected() {
		return nil
	}
	return st.facade.SwitchService(ctx, svc)
}

// printNowPlaying refreshes and prints the merged presentation state.
func (r *Runner) printNowPlaying(ctx context.Context, st *stack) error {
	np, err := st.facade.Refresh(ctx)
	if err != nil {
		return err
	}

	marker := "⏸"
	if np.IsPlaying {
		marker = "▶"
	}
	if np.DisplayTitle == "" {
		return r.writePlain("%s Nothing playing [%s]\n", marker, np.Service)
	}

	r.writePlain("%s %s [%s]\n", marker, np.DisplayTitle, np.Service)
	if np.DisplaySubtitle != "" {
		r.writePlain("  %s\n", np.DisplaySubtitle)
	}

	state := st.facade.State()
	if state.Duration > 0 {
		r.writePlain("  %s / %s\n", formatter.FormatDuration(state.Position), formatter.FormatDuration(state.Duration))
	}
	return nil
}

// PlayStart starts playback, optionally of a specific playlist position.
func (r *Runner) PlayStart(ctx context.Context, cmd *cli.Command) error {
	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := r.selectService(ctx, st, cmd.String("service")); err != nil {
		return err
	}

	if n := cmd.Int("track"); n > 0 {
		if music.Service(cmd.String("service")) != music.ServiceLocal {
			return fmt.Errorf("%w: --track only applies to the local service", shared.ErrInvalidFlag)
		}
		playlist := st.engine.Playlist()
		if n > len(playlist) {
			return fmt.Errorf("%w: track %d of %d", shared.ErrInvalidFlag, n, len(playlist))
		}
		track := playlist[n-1]
		if err := st.engine.Play(ctx, &track); err != nil {
			return err
		}
		return r.printNowPlaying(ctx, st)
	}

	np, err := st.facade.Refresh(ctx)
	if err != nil {
		return err
	}
	if !np.IsPlaying {
		if err := st.facade.PlayPause(ctx); err != nil {
			return err
		}
	}
	return r.printNowPlaying(ctx, st)
}

// PlayPause pauses playback when something is playing.
func (r *Runner) PlayPause(ctx context.Context, cmd *cli.Command) error {
	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := r.selectService(ctx, st, cmd.String("service")); err != nil {
		return err
	}

	np, err := st.facade.Refresh(ctx)
	if err != nil {
		return err
	}
	if !np.IsPlaying {
		return r.writePlain("Nothing playing\n")
	}
	if err := st.facade.PlayPause(ctx); err != nil {
		return err
	}
	return r.printNowPlaying(ctx, st)
}

// PlayStop stops playback and rewinds to the start of the track.
func (r *Runner) PlayStop(ctx context.Context, cmd *cli.Command) error {
	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := r.selectService(ctx, st, cmd.String("service")); err != nil {
		return err
	}
	if err := st.facade.Stop(ctx); err != nil {
		return err
	}
	return r.printNowPlaying(ctx, st)
}

// PlayNext skips to the next track.
func (r *Runner) PlayNext(ctx context.Context, cmd *cli.Command) error {
	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := r.selectService(ctx, st, cmd.String("service")); err != nil {
		return err
	}
	if err := st.facade.Next(ctx); err != nil {
		return err
	}
	return r.printNowPlaying(ctx, st)
}

// PlayPrevious returns to the previous track.
func (r *Runner) PlayPrevious(ctx context.Context, cmd *cli.Command) error {
	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := r.selectService(ctx, st, cmd.String("service")); err != nil {
		return err
	}
	if err := st.facade.Previous(ctx); err != nil {
		return err
	}
	return r.printNowPlaying(ctx, st)
}

// PlaySeek seeks within the current track. The position argument accepts Go
// duration syntax ("90s", "1m30s").
func (r *Runner) PlaySeek(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("position")
	if raw == "" {
		return fmt.Errorf("%w: position", shared.ErrMissingArgument)
	}
	pos, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%w: position %q: %v", shared.ErrInvalidInput, raw, err)
	}

	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := r.selectService(ctx, st, cmd.String("service")); err != nil {
		return err
	}
	if err := st.facade.Seek(ctx, pos); err != nil {
		return err
	}
	return r.printNowPlaying(ctx, st)
}

// PlayVolume sets the playback volume from a 0-100 level.
func (r *Runner) PlayVolume(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("level")
	if raw == "" {
		return fmt.Errorf("%w: level", shared.ErrMissingArgument)
	}
	level, err := strconv.Atoi(raw)
	if err != nil || level < 0 || level > 100 {
		return fmt.Errorf("%w: volume level %q (must be 0-100)", shared.ErrInvalidInput, raw)
	}

	st, cleanup, err := r.buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := r.selectService(ctx, st, cmd.String("service")); err != nil {
		return err
	}
	if err := st.facade.SetVolume(ctx, float64(level)/100); err != nil {
		return err
	}
	return r.writePlain("Volume set to %d%%\n", level)
}
