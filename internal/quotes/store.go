package quotes

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/AurifyAE/Honor-TV-View/internal/models"
)

// Snapshot is a point-in-time copy of every known quote.
type Snapshot map[string]models.Quote

func (s Snapshot) Quote(symbol string) (models.Quote, bool) {
	q, ok := s[normalizeSymbol(symbol)]
	return q, ok
}

// Store holds the latest quote per symbol. One goroutine applies ticks;
// any number of readers may call Quote or Snapshot concurrently.
type Store struct {
	mu     sync.RWMutex
	quotes map[string]models.Quote

	applied  uint64
	rejected uint64
}

func NewStore() *Store {
	return &Store{quotes: make(map[string]models.Quote)}
}

// ApplyTick merges t onto the stored quote for t.Symbol. Fields absent from
// the tick keep their previous values. It reports whether the tick was
// applied; ticks without a symbol, without any price, or with a non-finite
// price are dropped.
func (s *Store) ApplyTick(t models.Tick) bool {
	symbol := normalizeSymbol(t.Symbol)
	if symbol == "" || !t.HasPrices() || !finiteTick(t) {
		s.mu.Lock()
		s.rejected++
		s.mu.Unlock()
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, seen := s.quotes[symbol]
	next := prev
	next.Symbol = symbol
	next.BidDirection = models.DirectionUnchanged

	if t.Bid != nil {
		if seen {
			switch {
			case *t.Bid > prev.Bid:
				next.BidDirection = models.DirectionUp
			case *t.Bid < prev.Bid:
				next.BidDirection = models.DirectionDown
			}
		}
		next.Bid = *t.Bid
	}
	if t.Ask != nil {
		next.Ask = *t.Ask
	}
	if t.Low != nil {
		next.Low = *t.Low
	}
	if t.High != nil {
		next.High = *t.High
	}

	next.UpdatedAt = t.ReceivedAt
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = time.Now()
	}

	s.quotes[symbol] = next
	s.applied++
	return true
}

// Quote returns the latest quote for symbol. ok is false when no tick has
// arrived for it yet.
func (s *Store) Quote(symbol string) (models.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[normalizeSymbol(symbol)]
	return q, ok
}

// Snapshot copies the current quotes.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(Snapshot, len(s.quotes))
	for k, v := range s.quotes {
		out[k] = v
	}
	return out
}

// Symbols returns the known symbols in sorted order.
func (s *Store) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.quotes))
	for k := range s.quotes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Stats returns how many ticks were applied and rejected.
func (s *Store) Stats() (applied, rejected uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied, s.rejected
}

// Consume applies ticks from ch until ctx is done or ch is closed. It is
// meant to be the store's only writer.
func (s *Store) Consume(ctx context.Context, ch <-chan models.Tick) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-ch:
			if !ok {
				return
			}
			if !s.ApplyTick(t) {
				log.WithField("component", "quotes").WithField("symbol", t.Symbol).
					Warn("dropped tick without usable fields")
			}
		}
	}
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func finiteTick(t models.Tick) bool {
	for _, p := range []*float64{t.Bid, t.Ask, t.Low, t.High} {
		if p != nil && (math.IsNaN(*p) || math.IsInf(*p, 0)) {
			return false
		}
	}
	return true
}
