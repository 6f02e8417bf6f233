package playback

import (
	"context"
	"time"
)

// Engine opens players. Open blocks while asset metadata loads and must
// honour ctx cancellation.
type Engine interface {
	Open(ctx context.Context, url string) (Player, error)
}

// Player is one decoded video resource. Implementations must not invoke
// end-of-media callbacks from inside their own method calls.
type Player interface {
	Play()
	Pause()
	Seek(pos time.Duration)
	Position() time.Duration
	Duration() time.Duration
	// Stalled reports that play was requested but the player is waiting
	// for data.
	Stalled() bool
	// OnEnd registers fn for end-of-media. The returned func cancels it.
	OnEnd(fn func()) (cancel func())
	Close() error
}
