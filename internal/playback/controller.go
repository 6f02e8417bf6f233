package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

type phase int

const (
	phaseIdle phase = iota
	phaseLoading
	phaseReady
	phaseTornDown
)

type ControllerOptions struct {
	// StallCheckInterval drives OnPeriodicTick. Zero disables the ticker.
	StallCheckInterval time.Duration
	Logger             *slog.Logger
	// OnChange receives a snapshot after every observable transition. It is
	// called without the controller lock held.
	OnChange func(Snapshot)
}

// Controller runs the playback lifecycle for one video element. All
// transitions are serialized on an internal mutex; async results and player
// callbacks carry the generation they were issued under and are dropped once
// a newer Setup or a Teardown has happened.
type Controller struct {
	engine   Engine
	interval time.Duration
	log      *slog.Logger
	onChange func(Snapshot)

	mu         sync.Mutex
	gen        uint64
	phase      phase
	url        string
	player     Player
	visible    bool // element level, survives teardown
	userPaused bool
	playing    bool
	atEnd      bool
	err        error

	cancelSetup context.CancelFunc
	cancelEnd   func()
	stopTick    context.CancelFunc
}

func NewController(engine Engine, opts ControllerOptions) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{
		engine:   engine,
		interval: opts.StallCheckInterval,
		log:      opts.Logger,
		onChange: opts.OnChange,
	}
}

// Setup tears down the current session and loads url. It blocks until the
// engine has opened the asset. The player starts at zero, playing if the
// element is visible and paused otherwise.
//
// Returns ErrSetupCancelled if superseded while loading, or the engine's
// error (typically *AssetUnplayableError), in which case the session stays
// in Loading with no player.
func (c *Controller) Setup(ctx context.Context, url string) error {
	c.mu.Lock()
	c.teardownLocked()
	c.gen++
	gen := c.gen
	c.phase = phaseLoading
	c.url = url
	setupCtx, cancel := context.WithCancel(ctx)
	c.cancelSetup = cancel
	c.mu.Unlock()
	c.emit()

	p, err := c.engine.Open(setupCtx, url)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		cancel()
		if p != nil {
			if cerr := p.Close(); cerr != nil {
				c.log.Warn("playback: closing superseded player failed", "url", url, "error", cerr)
			}
		}
		return ErrSetupCancelled
	}
	cancel()
	c.cancelSetup = nil

	if err == nil && ctx.Err() != nil {
		// engine ignored cancellation; the caller no longer wants the player
		if cerr := p.Close(); cerr != nil {
			c.log.Warn("playback: closing abandoned player failed", "url", url, "error", cerr)
		}
		err = ctx.Err()
	}
	if err != nil {
		if ctx.Err() != nil {
			// the caller gave up; nothing is loading any more
			c.phase = phaseIdle
			c.url = ""
			c.mu.Unlock()
			c.emit()
			return err
		}
		c.err = err
		c.mu.Unlock()
		c.log.Warn("playback: setup failed", "url", url, "error", err)
		c.emit()
		return err
	}

	c.player = p
	c.phase = phaseReady
	p.Seek(0)
	c.cancelEnd = p.OnEnd(func() { c.reachedEnd(gen) })
	c.stopTick = c.startTicker(gen)
	if c.visible && !c.userPaused {
		p.Play()
		c.playing = true
	} else {
		p.Pause()
	}
	visible := c.visible
	c.mu.Unlock()

	c.log.Debug("playback: session ready", "url", url, "visible", visible)
	c.emit()
	return nil
}

// HandleVisibilityChange applies the element's visibility. Becoming visible
// restarts from zero and plays unless the user paused; becoming invisible
// pauses unconditionally and keeps the user-pause bit.
func (c *Controller) HandleVisibilityChange(visible bool) {
	c.mu.Lock()
	if c.visible == visible {
		c.mu.Unlock()
		return
	}
	c.visible = visible
	if c.phase == phaseReady {
		if visible {
			c.player.Seek(0)
			c.atEnd = false
			if !c.userPaused {
				c.player.Play()
				c.playing = true
			}
		} else {
			c.player.Pause()
			c.playing = false
		}
	}
	c.mu.Unlock()
	c.emit()
}

// VisibilityHandler returns a callback bound to the session for url. Once the
// controller has moved to another url or torn down, the callback does nothing.
func (c *Controller) VisibilityHandler(url string) func(bool) {
	return func(visible bool) {
		c.mu.Lock()
		stale := c.url != url || c.phase == phaseIdle || c.phase == phaseTornDown
		c.mu.Unlock()
		if stale {
			c.log.Debug("playback: dropping stale visibility callback", "url", url)
			return
		}
		c.HandleVisibilityChange(visible)
	}
}

// OnReachedEnd loops the session when it is visible and not user-paused,
// otherwise parks it paused at the end.
func (c *Controller) OnReachedEnd() {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()
	c.reachedEnd(gen)
}

func (c *Controller) reachedEnd(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.phase != phaseReady {
		c.mu.Unlock()
		return
	}
	if c.visible && !c.userPaused {
		c.player.Seek(0)
		c.player.Play()
		c.playing = true
		c.atEnd = false
	} else {
		c.player.Pause()
		c.playing = false
		c.atEnd = true
	}
	c.mu.Unlock()
	c.emit()
}

// OnPeriodicTick kicks a player that should be playing but is stuck
// waiting for data.
func (c *Controller) OnPeriodicTick() {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()
	c.tick(gen)
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.phase != phaseReady || !c.visible || c.userPaused {
		c.mu.Unlock()
		return
	}
	if !c.player.Stalled() {
		c.mu.Unlock()
		return
	}
	c.player.Play()
	c.playing = true
	url := c.url
	c.mu.Unlock()

	c.log.Debug("playback: resuming stalled player", "url", url)
	c.emit()
}

func (c *Controller) startTicker(gen uint64) context.CancelFunc {
	if c.interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		t := time.NewTicker(c.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				c.tick(gen)
			}
		}
	}()
	return cancel
}

// TogglePlayback is the user's play/pause action. Pausing sets the
// user-pause bit. Resuming clears it, and plays only if the element is
// visible.
func (c *Controller) TogglePlayback() error {
	c.mu.Lock()
	if c.phase != phaseReady {
		c.mu.Unlock()
		return ErrNotReady
	}
	if c.playing {
		c.player.Pause()
		c.playing = false
		c.userPaused = true
	} else {
		c.userPaused = false
		if c.visible {
			if c.atEnd {
				c.player.Seek(0)
				c.atEnd = false
			}
			c.player.Play()
			c.playing = true
		}
	}
	c.mu.Unlock()
	c.emit()
	return nil
}

// Teardown cancels any in-flight setup and the session's subscriptions,
// then releases the player. Safe to call repeatedly and from any state.
func (c *Controller) Teardown() {
	c.mu.Lock()
	changed := c.teardownLocked()
	c.mu.Unlock()
	if changed {
		c.emit()
	}
}

func (c *Controller) teardownLocked() bool {
	if c.phase == phaseTornDown || (c.phase == phaseIdle && c.player == nil) {
		return false
	}
	c.gen++

	if c.cancelSetup != nil {
		c.cancelSetup()
		c.cancelSetup = nil
	}
	if c.cancelEnd != nil {
		c.cancelEnd()
		c.cancelEnd = nil
	}
	if c.stopTick != nil {
		c.stopTick()
		c.stopTick = nil
	}
	if c.player != nil {
		c.player.Pause()
		if err := c.player.Close(); err != nil {
			c.log.Warn("playback: closing player failed", "url", c.url, "error", err)
		}
		c.player = nil
	}

	c.phase = phaseTornDown
	c.url = ""
	c.userPaused = false
	c.playing = false
	c.atEnd = false
	c.err = nil
	return true
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		URL:        c.url,
		Visible:    c.visible,
		UserPaused: c.userPaused,
		Err:        c.err,
	}
	switch c.phase {
	case phaseIdle:
		s.State = StateIdle
	case phaseLoading:
		s.State = StateLoading
	case phaseTornDown:
		s.State = StateTornDown
	case phaseReady:
		s.Position = c.player.Position()
		s.Duration = c.player.Duration()
		switch {
		case c.playing && c.player.Stalled():
			s.State = StateStalled
		case c.playing:
			s.State = StatePlaying
		case c.atEnd:
			s.State = StateEnded
		default:
			s.State = StatePaused
		}
	}
	return s
}

// URL is the url of the current session, empty when there is none.
func (c *Controller) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.url
}

func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller) emit() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.Snapshot())
}

// IsUnplayable reports whether err means the asset cannot be played.
func IsUnplayable(err error) bool {
	var ue *AssetUnplayableError
	return errors.As(err, &ue)
}
