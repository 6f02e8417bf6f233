package playback

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakePlayer struct {
	mu       sync.Mutex
	url      string
	playing  bool
	pos      time.Duration
	duration time.Duration
	stalled  bool
	closed   int
	plays    int
	seeks    []time.Duration
	endSubs  map[int]func()
	nextSub  int
}

func newFakePlayer(url string) *fakePlayer {
	return &fakePlayer{url: url, duration: 10 * time.Second, endSubs: map[int]func(){}}
}

func (p *fakePlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
	p.stalled = false
	p.plays++
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

func (p *fakePlayer) Seek(pos time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = pos
	p.seeks = append(p.seeks, pos)
}

func (p *fakePlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

func (p *fakePlayer) Duration() time.Duration { return p.duration }

func (p *fakePlayer) Stalled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && p.stalled
}

func (p *fakePlayer) OnEnd(fn func()) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.endSubs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.endSubs, id)
	}
}

func (p *fakePlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

// advanceTo moves the play head; reaching the duration fires end-of-media
// like a real player: it stops and notifies subscribers.
func (p *fakePlayer) advanceTo(pos time.Duration) {
	p.mu.Lock()
	p.pos = pos
	if pos < p.duration {
		p.mu.Unlock()
		return
	}
	p.playing = false
	fns := make([]func(), 0, len(p.endSubs))
	for _, fn := range p.endSubs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (p *fakePlayer) setStalled(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stalled = v
}

func (p *fakePlayer) isPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *fakePlayer) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePlayer) subscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.endSubs)
}

// fakeEngine hands out fakePlayers. A url with a gate blocks Open until the
// gate is closed; Open ignores cancellation when ignoreCancel is set, to
// model an engine that finishes loading after being superseded.
type fakeEngine struct {
	mu           sync.Mutex
	gates        map[string]chan struct{}
	errs         map[string]error
	ignoreCancel bool
	opened       []*fakePlayer
	started      chan string
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		gates:   map[string]chan struct{}{},
		errs:    map[string]error{},
		started: make(chan string, 16),
	}
}

func (e *fakeEngine) gate(url string) chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch := make(chan struct{})
	e.gates[url] = ch
	return ch
}

func (e *fakeEngine) fail(url string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs[url] = err
}

func (e *fakeEngine) Open(ctx context.Context, url string) (Player, error) {
	e.mu.Lock()
	gate := e.gates[url]
	err := e.errs[url]
	ignore := e.ignoreCancel
	e.mu.Unlock()

	e.started <- url
	if gate != nil {
		if ignore {
			<-gate
		} else {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if err != nil {
		return nil, err
	}

	p := newFakePlayer(url)
	e.mu.Lock()
	e.opened = append(e.opened, p)
	e.mu.Unlock()
	return p, nil
}

func (e *fakeEngine) players() []*fakePlayer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*fakePlayer(nil), e.opened...)
}

func (e *fakeEngine) last() *fakePlayer {
	ps := e.players()
	if len(ps) == 0 {
		return nil
	}
	return ps[len(ps)-1]
}

var errBoom = errors.New("boom")
