package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/AurifyAE/Honor-TV-View/internal/models"
	"github.com/AurifyAE/Honor-TV-View/internal/pricing"
	"github.com/AurifyAE/Honor-TV-View/internal/quotes"
	"github.com/AurifyAE/Honor-TV-View/internal/scheduler"
)

// Feed is the streaming side of the pipeline. *feed.Client satisfies it.
type Feed interface {
	Run(ctx context.Context) error
	Ticks() <-chan models.Tick
	Connected() bool
	Dropped() uint64
}

// Stats are the pipeline counters reported by the health endpoint.
type Stats struct {
	TicksApplied  uint64 `json:"ticksApplied"`
	TicksRejected uint64 `json:"ticksRejected"`
	FramesDropped uint64 `json:"framesDropped"`
	RefreshCycles uint64 `json:"refreshCycles"`
}

// SpotView is one row of the spot panel: the stored quote with the
// metal's spread applied.
type SpotView struct {
	Symbol string       `json:"symbol"`
	Known  bool         `json:"known"`
	Quote  models.Quote `json:"quote"`
}

// Frame is everything a screen needs for one refresh.
type Frame struct {
	At            time.Time                `json:"at"`
	Spot          []SpotView               `json:"spot"`
	Items         []pricing.PricedLineItem `json:"items"`
	FeedConnected bool                     `json:"feedConnected"`
	LimitExceeded bool                     `json:"limitExceeded"`
}

type Options struct {
	Feed     Feed
	Engine   *pricing.Engine
	Rates    *models.SpotRateConfig
	Symbols  []string // spot panel order
	Interval time.Duration

	// OnFrame receives each refreshed frame on the scheduler goroutine.
	OnFrame func(Frame)
}

// Service wires the feed into the quote store and recomputes prices on a
// fixed cadence.
type Service struct {
	feed    Feed
	store   *quotes.Store
	engine  *pricing.Engine
	symbols []string
	onFrame func(Frame)
	log     *log.Entry

	mu      sync.RWMutex
	rates   models.SpotRateConfig
	items   []models.CommodityLineItem
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	stopped bool

	refresher     *scheduler.RefreshScheduler
	limitExceeded atomic.Bool
}

func NewService(opts Options) *Service {
	engine := opts.Engine
	if engine == nil {
		engine = pricing.NewEngine(pricing.DefaultCurrencyPeg)
	}
	symbols := opts.Symbols
	if len(symbols) == 0 {
		symbols = []string{models.SymbolGold, models.SymbolSilver}
	}

	s := &Service{
		feed:    opts.Feed,
		store:   quotes.NewStore(),
		engine:  engine,
		symbols: symbols,
		onFrame: opts.OnFrame,
		log:     log.WithField("component", "pipeline"),
	}
	if opts.Rates != nil {
		s.SetRates(opts.Rates)
	}
	s.refresher = scheduler.NewRefreshScheduler(scheduler.RefreshConfig{
		Interval:  opts.Interval,
		OnRefresh: s.refresh,
	})
	return s
}

// ErrStopped is returned by Start once the service has been stopped. The
// feed it wraps cannot be restarted, so a Service runs at most once.
var ErrStopped = errors.New("pipeline: service already stopped")

// Start launches the feed, the store consumer and the refresh cadence.
func (s *Service) Start(ctx context.Context) error {
	if s.feed == nil {
		return errors.New("pipeline: no feed configured")
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if s.running {
		s.mu.Unlock()
		s.log.Warn("already running")
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.mu.Unlock()

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := s.feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.WithError(err).Error("feed stopped")
		}
	}()
	go func() {
		defer s.wg.Done()
		s.store.Consume(ctx, s.feed.Ticks())
	}()

	s.refresher.Start()
	s.log.Infof("started with %d commodities", len(s.Items()))
	return nil
}

// Stop halts the cadence, closes the feed and waits for both goroutines.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.stopped = true
	cancel := s.cancel
	s.mu.Unlock()

	s.refresher.Stop()
	cancel()
	s.wg.Wait()
	s.log.Info("stopped")
}

// SetRates replaces the session's commodity rows and spreads. Spreads are
// folded into item premiums once here rather than on every refresh.
func (s *Service) SetRates(cfg *models.SpotRateConfig) {
	for _, item := range cfg.Commodities {
		if !pricing.KnownUnit(item.Weight) {
			s.log.WithField("metal", item.Metal).Warnf("unknown weight unit %q, pricing per gram", item.Weight)
		}
	}
	items := pricing.ApplySpreads(cfg.Commodities, cfg.Spreads)

	s.mu.Lock()
	s.rates = *cfg
	s.items = items
	s.mu.Unlock()
}

// Items returns the session items with spreads applied.
func (s *Service) Items() []models.CommodityLineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CommodityLineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Service) Store() *quotes.Store { return s.store }

func (s *Service) Connected() bool {
	return s.feed != nil && s.feed.Connected()
}

func (s *Service) Stats() Stats {
	applied, rejected := s.store.Stats()
	st := Stats{
		TicksApplied:  applied,
		TicksRejected: rejected,
		RefreshCycles: s.refresher.Cycles(),
	}
	if s.feed != nil {
		st.FramesDropped = s.feed.Dropped()
	}
	return st
}

func (s *Service) SetLimitExceeded(v bool) { s.limitExceeded.Store(v) }

// Frame computes a frame from a single store snapshot, so spot and item
// prices always agree.
func (s *Service) Frame(now time.Time) Frame {
	snap := s.store.Snapshot()

	s.mu.RLock()
	spreads := s.rates.Spreads
	items := s.items
	s.mu.RUnlock()

	spot := make([]SpotView, 0, len(s.symbols))
	for _, sym := range s.symbols {
		q, ok := snap.Quote(sym)
		if ok {
			q = pricing.SpotQuote(q, spreads)
		} else {
			q = models.Quote{Symbol: sym, BidDirection: models.DirectionUnchanged}
		}
		spot = append(spot, SpotView{Symbol: sym, Known: ok, Quote: q})
	}

	return Frame{
		At:            now,
		Spot:          spot,
		Items:         s.engine.PriceAll(snap, items),
		FeedConnected: s.Connected(),
		LimitExceeded: s.limitExceeded.Load(),
	}
}

func (s *Service) refresh(now time.Time) {
	f := s.Frame(now)
	if s.onFrame != nil {
		s.onFrame(f)
	}
}
