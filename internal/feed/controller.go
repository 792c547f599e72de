package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/spacesedan/paperboy/internal/models"
)

var (
	ErrOffline    = errors.New("[FeedController] offline, fetch suspended")
	ErrUnknownRow = errors.New("[FeedController] unknown row")
	ErrNoTopic    = errors.New("[FeedController] no topic selected")
	ErrStopped    = errors.New("[FeedController] controller is not running")
)

const DefaultFetchTimeout = 30 * time.Second

// Fetcher is the article fetch service consumed by the controller.
type Fetcher interface {
	GetTopArticles(ctx context.Context, topic models.Topic) ([]models.Article, error)
}

type EventKind int

const (
	// EventFeedReplaced asks the renderer to redraw from the top.
	EventFeedReplaced EventKind = iota + 1
	// EventOffline asks the UI to present the offline fallback.
	EventOffline
	// EventOnline dismisses the fallback. No fetch is issued.
	EventOnline
)

func (k EventKind) String() string {
	switch k {
	case EventFeedReplaced:
		return "feed_replaced"
	case EventOffline:
		return "offline"
	case EventOnline:
		return "online"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind     EventKind
	Snapshot Snapshot
}

// Snapshot is a copy of the controller state. Articles is the active feed.
type Snapshot struct {
	Topic      models.Topic     `json:"topic"`
	Articles   []models.Article `json:"articles"`
	Generation uint64           `json:"generation"`
	Loading    bool             `json:"loading"`
	Offline    bool             `json:"offline"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Err        string           `json:"error,omitempty"`
}

type Option func(*Controller)

func WithFetchTimeout(d time.Duration) Option {
	return func(c *Controller) { c.fetchTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller owns the active feed. All state changes, including fetch
// completions, run on the goroutine executing Run, so state needs no locking.
// Each fetch is tagged with a generation; a completion whose generation is not
// the latest one requested is dropped instead of overwriting a newer topic.
type Controller struct {
	fetcher      Fetcher
	fetchTimeout time.Duration
	now          func() time.Time

	calls chan func()
	done  chan struct{}

	// owned by the Run goroutine
	ctx     context.Context
	state   Snapshot
	pending uint64

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

func NewController(fetcher Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:      fetcher,
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
		calls:        make(chan func()),
		done:         make(chan struct{}),
		subs:         make(map[int]func(Event)),
		state:        Snapshot{Articles: []models.Article{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes calls and fetch completions until ctx is cancelled. It must be
// called exactly once.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	c.ctx = ctx

	slog.Info("[FeedController] Started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("[FeedController] Stopped")
			return ctx.Err()
		case fn := <-c.calls:
			fn()
		}
	}
}

// Subscribe registers fn for redraw and connectivity events. fn runs on the
// controller goroutine and must not call back into the controller.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subs, id)
	}
}

// SelectTopic makes topic the active one and starts fetching it. The call
// returns once the fetch is dispatched; the feed is replaced when it completes.
func (c *Controller) SelectTopic(ctx context.Context, topic models.Topic) error {
	return c.callErr(ctx, func() error {
		c.state.Topic = topic
		if c.state.Offline {
			// drop the previous topic's feed and any fetch still in flight for it
			c.pending++
			c.state.Articles = []models.Article{}
			c.state.UpdatedAt = time.Time{}
			c.state.Err = ""
			c.state.Loading = false
			slog.Info("[FeedController] Offline, topic selected without fetch",
				slog.String("topic", string(topic)))
			return ErrOffline
		}
		c.startFetch(false)
		return nil
	})
}

// Refresh re-fetches the current topic, bypassing any feed cache.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.callErr(ctx, func() error {
		if c.state.Topic == "" {
			return ErrNoTopic
		}
		if c.state.Offline {
			return ErrOffline
		}
		c.startFetch(true)
		return nil
	})
}

// SetReachable feeds connectivity transitions into the controller. Repeated
// reports of the same state are ignored.
func (c *Controller) SetReachable(ctx context.Context, reachable bool) error {
	return c.callErr(ctx, func() error {
		if c.state.Offline == !reachable {
			return nil
		}
		c.state.Offline = !reachable
		if reachable {
			slog.Info("[FeedController] Back online, waiting for manual refresh")
			c.emit(EventOnline)
		} else {
			slog.Warn("[FeedController] Offline, suspending fetches")
			c.emit(EventOffline)
		}
		return nil
	})
}

func (c *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	return call(c, ctx, c.snapshot)
}

// Article returns the article at row of the active feed.
func (c *Controller) Article(ctx context.Context, row int) (models.Article, error) {
	var article models.Article
	err := c.callErr(ctx, func() error {
		if row < 0 || row >= len(c.state.Articles) {
			return ErrUnknownRow
		}
		article = c.state.Articles[row]
		return nil
	})
	return article, err
}

func (c *Controller) startFetch(fresh bool) {
	c.pending++
	gen := c.pending
	topic := c.state.Topic
	c.state.Loading = true

	parent := c.ctx
	if fresh {
		parent = WithoutCache(parent)
	}

	slog.Debug("[FeedController] Fetching articles",
		slog.String("topic", string(topic)),
		slog.Uint64("generation", gen))

	go func() {
		ctx, cancel := context.WithTimeout(parent, c.fetchTimeout)
		defer cancel()

		articles, err := c.fetcher.GetTopArticles(ctx, topic)
		c.post(func() { c.complete(gen, topic, articles, err) })
	}()
}

func (c *Controller) complete(gen uint64, topic models.Topic, articles []models.Article, err error) {
	if gen != c.pending {
		slog.Debug("[FeedController] Discarding stale fetch",
			slog.String("topic", string(topic)),
			slog.Uint64("generation", gen),
			slog.Uint64("latest", c.pending))
		return
	}

	c.state.Loading = false
	c.state.Generation = gen
	if err != nil {
		slog.Warn("[FeedController] Fetch failed, showing empty feed",
			slog.String("topic", string(topic)),
			slog.String("error", err.Error()))
		c.state.Err = err.Error()
		articles = nil
	} else {
		c.state.Err = ""
		c.state.UpdatedAt = c.now()
	}

	c.state.Articles = cloneArticles(articles)
	slog.Info("[FeedController] Feed replaced",
		slog.String("topic", string(topic)),
		slog.Int("count", len(c.state.Articles)))
	c.emit(EventFeedReplaced)
}

func (c *Controller) emit(kind EventKind) {
	c.subMu.Lock()
	fns := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	ev := Event{Kind: kind, Snapshot: c.snapshot()}
	for _, fn := range fns {
		fn(ev)
	}
}

func (c *Controller) snapshot() Snapshot {
	s := c.state
	s.Articles = cloneArticles(c.state.Articles)
	return s
}

// post hands fn to the Run goroutine, dropping it if the controller stopped.
func (c *Controller) post(fn func()) {
	select {
	case c.calls <- fn:
	case <-c.done:
	}
}

func (c *Controller) callErr(ctx context.Context, fn func() error) error {
	err, callErr := call(c, ctx, fn)
	if callErr != nil {
		return callErr
	}
	return err
}

func call[T any](c *Controller, ctx context.Context, fn func() T) (T, error) {
	result := make(chan T, 1)
	var zero T

	select {
	case c.calls <- func() { result <- fn() }:
	case <-c.done:
		return zero, ErrStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	return <-result, nil
}

func cloneArticles(articles []models.Article) []models.Article {
	out := make([]models.Article, len(articles))
	copy(out, articles)
	return out
}
