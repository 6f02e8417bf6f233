package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/h2non/filetype"

	"feedview/internal/media"
)

const defaultClipDuration = 10 * time.Second

// SimEngine is a headless Engine. It fetches the asset to check that it
// really is a video, then hands out players that advance on the wall clock
// without decoding anything.
type SimEngine struct {
	fetcher   media.Fetcher
	clip      time.Duration
	buffering time.Duration
	log       *slog.Logger
}

type SimOptions struct {
	ClipDuration time.Duration
	// Buffering is how long a fresh player reports itself stalled after its
	// first Play.
	Buffering time.Duration
	Logger    *slog.Logger
}

func NewSimEngine(fetcher media.Fetcher, opts SimOptions) *SimEngine {
	if opts.ClipDuration <= 0 {
		opts.ClipDuration = defaultClipDuration
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &SimEngine{
		fetcher:   fetcher,
		clip:      opts.ClipDuration,
		buffering: opts.Buffering,
		log:       opts.Logger,
	}
}

func (e *SimEngine) Open(ctx context.Context, url string) (Player, error) {
	data, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &media.FetchError{URL: url, Err: err}
	}
	if !filetype.IsVideo(data) {
		kind, _ := filetype.Match(data)
		reason := "unrecognized content"
		if kind != filetype.Unknown {
			reason = "content is " + kind.MIME.Value
		}
		return nil, &AssetUnplayableError{URL: url, Reason: reason}
	}
	e.log.Debug("playback: opened simulated player", "url", url, "bytes", len(data))
	return newSimPlayer(e.clip, e.buffering), nil
}

type simPlayer struct {
	mu         sync.Mutex
	duration   time.Duration
	buffering  time.Duration
	pos        time.Duration // position at anchor
	anchor     time.Time
	stallUntil time.Time
	buffered   bool
	playing    bool
	closed     bool
	timer      *time.Timer
	seq        int
	endSubs    map[int]func()
	nextSub    int
}

func newSimPlayer(duration, buffering time.Duration) *simPlayer {
	return &simPlayer{
		duration:  duration,
		buffering: buffering,
		endSubs:   make(map[int]func()),
	}
}

func (p *simPlayer) positionAt(now time.Time) time.Duration {
	if !p.playing {
		return p.pos
	}
	start := p.anchor
	if p.stallUntil.After(start) {
		start = p.stallUntil
	}
	if now.Before(start) {
		return p.pos
	}
	pos := p.pos + now.Sub(start)
	if pos > p.duration {
		pos = p.duration
	}
	return pos
}

func (p *simPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	now := time.Now()
	if p.playing {
		if now.Before(p.stallUntil) {
			// forced resume skips the rest of the buffering window
			p.pos = p.positionAt(now)
			p.anchor = now
			p.stallUntil = now
			p.rescheduleLocked(now)
		}
		return
	}
	p.playing = true
	p.anchor = now
	if !p.buffered {
		p.buffered = true
		p.stallUntil = now.Add(p.buffering)
	}
	p.rescheduleLocked(now)
}

func (p *simPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	now := time.Now()
	p.pos = p.positionAt(now)
	p.playing = false
	p.rescheduleLocked(now)
}

func (p *simPlayer) Seek(pos time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if pos > p.duration {
		pos = p.duration
	}
	now := time.Now()
	p.pos = pos
	p.anchor = now
	p.rescheduleLocked(now)
}

func (p *simPlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionAt(time.Now())
}

func (p *simPlayer) Duration() time.Duration { return p.duration }

func (p *simPlayer) Stalled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && time.Now().Before(p.stallUntil)
}

func (p *simPlayer) OnEnd(fn func()) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.endSubs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.endSubs, id)
		p.mu.Unlock()
	}
}

func (p *simPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.playing = false
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.endSubs = map[int]func(){}
	return nil
}

// rescheduleLocked arms the end-of-media timer for the current run. Callers
// have just brought pos and anchor up to date.
func (p *simPlayer) rescheduleLocked(now time.Time) {
	p.seq++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if !p.playing || p.closed {
		return
	}
	start := now
	if p.stallUntil.After(start) {
		start = p.stallUntil
	}
	end := start.Add(p.duration - p.pos)
	seq := p.seq
	p.timer = time.AfterFunc(end.Sub(now), func() { p.reachEnd(seq) })
}

func (p *simPlayer) reachEnd(seq int) {
	p.mu.Lock()
	if seq != p.seq || p.closed || !p.playing {
		p.mu.Unlock()
		return
	}
	p.pos = p.duration
	p.playing = false
	p.timer = nil
	fns := make([]func(), 0, len(p.endSubs))
	for _, fn := range p.endSubs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
