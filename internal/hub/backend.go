package hub

import (
	"context"
	"time"

	"github.com/desertthunder/domo/internal/music"
	"github.com/desertthunder/domo/internal/player"
	"github.com/desertthunder/domo/internal/spotify"
)

// Backend is one playback implementation conforming to the shared
// command/state contract.
type Backend interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Seek(ctx context.Context, pos time.Duration) error
	SetVolume(ctx context.Context, v float64) error

	// State refreshes and returns the backend's playback snapshot. For the
	// remote backend this is a network poll.
	State(ctx context.Context) (music.PlaybackState, error)
}

// Constructor builds a backend on first use.
type Constructor func() (Backend, error)

// localBackend adapts the playback engine to the Backend contract.
type localBackend struct {
	engine *player.Engine
}

// LocalBackend wraps an engine for use behind the facade.
func LocalBackend(engine *player.Engine) Backend {
	return &localBackend{engine: engine}
}

func (b *localBackend) Play(ctx context.Context) error {
	return b.engine.Play(ctx, nil)
}

func (b *localBackend) Pause(context.Context) error {
	return b.engine.Pause()
}

func (b *localBackend) Stop(context.Context) error {
	return b.engine.Stop()
}

func (b *localBackend) Next(ctx context.Context) error {
	return b.engine.Next(ctx)
}

func (b *localBackend) Previous(ctx context.Context) error {
	return b.engine.Previous(ctx)
}

func (b *localBackend) Seek(_ context.Context, pos time.Duration) error {
	return b.engine.Seek(pos)
}

func (b *localBackend) SetVolume(_ context.Context, v float64) error {
	return b.engine.SetVolume(v)
}

func (b *localBackend) State(context.Context) (music.PlaybackState, error) {
	return b.engine.State(), nil
}

// remoteBackend adapts the remote client to the Backend contract.
type remoteBackend struct {
	client *spotify.Client
}

// RemoteBackend wraps a remote client for use behind the facade.
func RemoteBackend(client *spotify.Client) Backend {
	return &remoteBackend{client: client}
}

func (b *remoteBackend) Play(ctx context.Context) error {
	return b.client.Play(ctx)
}

func (b *remoteBackend) Pause(ctx context.Context) error {
	return b.client.Pause(ctx)
}

// Stop pauses remote playback; the remote transport has no stop command.
func (b *remoteBackend) Stop(ctx context.Context) error {
	return b.client.Pause(ctx)
}

func (b *remoteBackend) Next(ctx context.Context) error {
	return b.client.Next(ctx)
}

func (b *remoteBackend) Previous(ctx context.Context) error {
	return b.client.Previous(ctx)
}

func (b *remoteBackend) Seek(ctx context.Context, pos time.Duration) error {
	return b.client.Seek(ctx, pos)
}

func (b *remoteBackend) SetVolume(ctx context.Context, v float64) error {
	return b.client.SetVolume(ctx, v)
}

func (b *remoteBackend) State(ctx context.Context) (music.PlaybackState, error) {
	return b.client.PlaybackState(ctx)
}
