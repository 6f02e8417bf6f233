package viewer

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"

	"feedview/internal/common"
	"feedview/internal/feed"
	"feedview/internal/media"
	"feedview/internal/playback"
	"feedview/internal/visibility"
)

type ImageState int

const (
	ImageNone ImageState = iota // post has no image
	ImagePending
	ImageLoading
	ImageReady
	ImageFailed
)

func (s ImageState) String() string {
	switch s {
	case ImageNone:
		return "none"
	case ImagePending:
		return "pending"
	case ImageLoading:
		return "loading"
	case ImageReady:
		return "ready"
	case ImageFailed:
		return "failed"
	}
	return "unknown"
}

// Row is what the rendering layer would draw for one post.
type Row struct {
	Index    int
	Post     common.Post
	Frame    visibility.Rect
	Visible  bool
	Image    ImageState
	ImageErr error
	Slot     string // playback slot, empty for posts without video
}

// Options sets the layout. Any partially shown row counts as visible, so a
// viewport taller than one row, or offsets that are not row multiples, put
// more than one row (and video) on screen at once.
type Options struct {
	RowHeight      float64
	ViewportWidth  float64
	ViewportHeight float64
	// PrefetchAhead is how many rows below the viewport get their images
	// warmed in the cache.
	PrefetchAhead int
	Logger        *slog.Logger
}

type row struct {
	post     common.Post
	tracker  *visibility.Tracker
	slot     string
	ctrl     *playback.Controller // nil for posts without video
	ctx      context.Context      // cancelled when the row leaves the feed
	cancel   context.CancelFunc
	removed  bool
	frame    visibility.Rect
	image    ImageState
	imageErr error
	bound    bool
}

// Viewer is a headless stand-in for the feed's list view: fixed height rows,
// a scroll offset, one visibility tracker per row.
type Viewer struct {
	coord    *feed.Coordinator
	loader   *media.Loader
	sessions *playback.Manager
	opts     Options
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	offset float64
	rows   []*row
	closed bool
}

func New(coord *feed.Coordinator, loader *media.Loader, sessions *playback.Manager, opts Options) *Viewer {
	if opts.RowHeight <= 0 {
		opts.RowHeight = 400
	}
	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = 400
	}
	if opts.ViewportHeight <= 0 {
		opts.ViewportHeight = opts.RowHeight
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Viewer{
		coord:    coord,
		loader:   loader,
		sessions: sessions,
		opts:     opts,
		log:      opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Reload rebuilds the rows from the coordinator. Rows whose post is gone
// are detached and their playback slot released; surviving posts keep
// their state. The current offset is re-applied.
func (v *Viewer) Reload() {
	posts := v.coord.Posts()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	existing := make(map[string]*row, len(v.rows))
	for _, r := range v.rows {
		existing[r.post.ID.String()] = r
	}
	rows := make([]*row, 0, len(posts))
	for _, p := range posts {
		key := p.ID.String()
		if r, ok := existing[key]; ok {
			r.post = p
			rows = append(rows, r)
			delete(existing, key)
			continue
		}
		rows = append(rows, v.newRow(p))
	}
	v.rows = rows
	offset := v.offset

	for _, r := range existing {
		r.removed = true
		r.cancel()
	}
	v.mu.Unlock()

	for _, r := range existing {
		r.tracker.Detach()
		if r.slot != "" {
			v.sessions.Remove(r.slot)
		}
	}
	v.ScrollTo(offset)
}

func (v *Viewer) newRow(p common.Post) *row {
	r := &row{post: p}
	r.ctx, r.cancel = context.WithCancel(v.ctx)
	if p.ImageRef != nil {
		r.image = ImagePending
	}
	if p.VideoRef != nil {
		r.slot = p.ID.String()
		r.ctrl = v.sessions.Slot(r.slot)
		r.tracker = visibility.NewTracker(r.ctrl.HandleVisibilityChange)
	} else {
		r.tracker = visibility.NewTracker(nil)
	}
	return r
}

// ScrollTo moves the viewport top to offset, clamped to the content, and
// pushes the new geometry through every row's tracker. Rows leaving the
// viewport are updated before rows entering it.
func (v *Viewer) ScrollTo(offset float64) {
	type update struct {
		r       *row
		frame   visibility.Rect
		visible bool
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	if math.IsNaN(offset) || offset < 0 {
		offset = 0
	}
	if limit := v.maxOffsetLocked(); offset > limit {
		offset = limit
	}
	v.offset = offset

	viewport := v.viewport()
	updates := make([]update, 0, len(v.rows))
	for i, r := range v.rows {
		r.frame = visibility.Rect{
			X: 0,
			Y: float64(i)*v.opts.RowHeight - offset,
			W: v.opts.ViewportWidth,
			H: v.opts.RowHeight,
		}
		updates = append(updates, update{r: r, frame: r.frame, visible: visibility.IsVisible(r.frame, viewport, true)})
	}
	v.mu.Unlock()

	for _, u := range updates {
		if !u.visible {
			u.r.tracker.Update(u.frame, viewport, true)
		}
	}
	for _, u := range updates {
		if u.visible {
			u.r.tracker.Update(u.frame, viewport, true)
			v.materialize(u.r)
		}
	}
	v.prefetchBelow(offset)
}

func (v *Viewer) ScrollBy(delta float64) {
	v.mu.Lock()
	offset := v.offset
	v.mu.Unlock()
	v.ScrollTo(offset + delta)
}

// materialize starts the image load and the playback setup for a row the
// first time it is on screen.
func (v *Viewer) materialize(r *row) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	loadImage := r.image == ImagePending
	if loadImage {
		r.image = ImageLoading
	}
	setup := r.ctrl != nil && !r.bound
	r.bound = r.bound || setup
	imageURL, videoURL := r.post.ImageURL(), r.post.VideoURL()
	if loadImage || setup {
		v.wg.Add(1)
	}
	v.mu.Unlock()

	if !loadImage && !setup {
		return
	}
	go func() {
		defer v.wg.Done()
		if loadImage {
			v.loadRowImage(r, imageURL)
		}
		if setup {
			v.setupSlot(r, videoURL)
		}
	}()
}

func (v *Viewer) loadRowImage(r *row, url string) {
	_, err := v.loader.LoadImage(r.ctx, url)

	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case err == nil:
		r.image = ImageReady
		r.imageErr = nil
	case r.ctx.Err() != nil:
		r.image = ImagePending
	default:
		r.image = ImageFailed
		r.imageErr = err
		v.log.Warn("viewer: image unavailable", "url", url, "error", err)
	}
}

// setupSlot binds the row's controller to url. Rows dropped by Reload or a
// closed viewer are skipped; the row context covers a removal racing Setup.
func (v *Viewer) setupSlot(r *row, url string) {
	v.mu.Lock()
	skip := v.closed || r.removed
	v.mu.Unlock()
	if skip {
		return
	}

	err := r.ctrl.Setup(r.ctx, url)
	if err == nil || errors.Is(err, playback.ErrSetupCancelled) || r.ctx.Err() != nil {
		return
	}
	v.log.Warn("viewer: video unavailable", "slot", r.slot, "url", url, "error", err)
}

func (v *Viewer) prefetchBelow(offset float64) {
	if v.opts.PrefetchAhead <= 0 {
		return
	}
	v.mu.Lock()
	first := int(math.Ceil((offset + v.opts.ViewportHeight) / v.opts.RowHeight))
	var urls []string
	for i := first; i < first+v.opts.PrefetchAhead && i < len(v.rows); i++ {
		if v.rows[i].image == ImagePending {
			urls = append(urls, v.rows[i].post.ImageURL())
		}
	}
	if len(urls) == 0 || v.closed {
		v.mu.Unlock()
		return
	}
	v.wg.Add(1)
	v.mu.Unlock()

	go func() {
		defer v.wg.Done()
		v.loader.Prefetch(v.ctx, urls...)
	}()
}

func (v *Viewer) viewport() visibility.Rect {
	return visibility.Rect{X: 0, Y: 0, W: v.opts.ViewportWidth, H: v.opts.ViewportHeight}
}

func (v *Viewer) maxOffsetLocked() float64 {
	limit := float64(len(v.rows))*v.opts.RowHeight - v.opts.ViewportHeight
	if limit < 0 {
		return 0
	}
	return limit
}

func (v *Viewer) Offset() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// AtEnd reports whether the viewport shows the last row.
func (v *Viewer) AtEnd() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset >= v.maxOffsetLocked()
}

func (v *Viewer) Rows() []Row {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Row, len(v.rows))
	for i, r := range v.rows {
		out[i] = Row{
			Index:    i,
			Post:     r.post,
			Frame:    r.frame,
			Visible:  r.tracker.Visible(),
			Image:    r.image,
			ImageErr: r.imageErr,
			Slot:     r.slot,
		}
	}
	return out
}

// Wait blocks until every image load and playback setup started so far has
// finished.
func (v *Viewer) Wait() {
	v.wg.Wait()
}

// Close discards the view: in-flight work is cancelled, every playback slot
// torn down and the image cache emptied.
func (v *Viewer) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	rows := v.rows
	v.mu.Unlock()

	v.cancel()
	for _, r := range rows {
		r.tracker.Detach()
	}
	v.sessions.Close()
	v.wg.Wait()
	v.loader.Cache().Clear()
	v.log.Info("viewer: closed", "rows", len(rows))
}
