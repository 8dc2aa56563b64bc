package quotes

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AurifyAE/Honor-TV-View/internal/models"
)

func fullTick(symbol string, bid, ask, low, high float64) models.Tick {
	return models.Tick{
		Symbol: symbol,
		Bid:    models.Float(bid),
		Ask:    models.Float(ask),
		Low:    models.Float(low),
		High:   models.Float(high),
	}
}

func TestStore_UnknownSymbol(t *testing.T) {
	s := NewStore()
	_, ok := s.Quote("GOLD")
	assert.False(t, ok)
}

func TestStore_FirstTickIsUnchanged(t *testing.T) {
	s := NewStore()
	require.True(t, s.ApplyTick(fullTick("GOLD", 1900, 1905, 1890, 1910)))

	q, ok := s.Quote("GOLD")
	require.True(t, ok)
	assert.Equal(t, 1900.0, q.Bid)
	assert.Equal(t, 1905.0, q.Ask)
	assert.Equal(t, 1890.0, q.Low)
	assert.Equal(t, 1910.0, q.High)
	assert.Equal(t, models.DirectionUnchanged, q.BidDirection)
	assert.False(t, q.UpdatedAt.IsZero())
}

func TestStore_SameTickTwiceIsUnchanged(t *testing.T) {
	s := NewStore()
	tick := fullTick("GOLD", 1900, 1905, 1890, 1910)
	s.ApplyTick(tick)
	s.ApplyTick(tick)

	q, _ := s.Quote("GOLD")
	assert.Equal(t, models.DirectionUnchanged, q.BidDirection)
}

func TestStore_Directionality(t *testing.T) {
	s := NewStore()
	s.ApplyTick(models.Tick{Symbol: "GOLD", Bid: models.Float(1900)})

	s.ApplyTick(models.Tick{Symbol: "GOLD", Bid: models.Float(1901)})
	q, _ := s.Quote("GOLD")
	assert.Equal(t, models.DirectionUp, q.BidDirection)

	s.ApplyTick(models.Tick{Symbol: "GOLD", Bid: models.Float(1899.5)})
	q, _ = s.Quote("GOLD")
	assert.Equal(t, models.DirectionDown, q.BidDirection)
}

func TestStore_PartialTickKeepsOtherFields(t *testing.T) {
	s := NewStore()
	s.ApplyTick(fullTick("SILVER", 24, 24.5, 23.8, 24.9))
	s.ApplyTick(models.Tick{Symbol: "SILVER", Bid: models.Float(24.2)})

	q, _ := s.Quote("SILVER")
	assert.Equal(t, 24.2, q.Bid)
	assert.Equal(t, 24.5, q.Ask)
	assert.Equal(t, 23.8, q.Low)
	assert.Equal(t, 24.9, q.High)
	assert.Equal(t, models.DirectionUp, q.BidDirection)

	// a tick without a bid does not move the bid
	s.ApplyTick(models.Tick{Symbol: "SILVER", Ask: models.Float(24.6)})
	q, _ = s.Quote("SILVER")
	assert.Equal(t, 24.2, q.Bid)
	assert.Equal(t, 24.6, q.Ask)
	assert.Equal(t, models.DirectionUnchanged, q.BidDirection)
}

func TestStore_RejectsMalformedTicks(t *testing.T) {
	s := NewStore()
	s.ApplyTick(fullTick("GOLD", 1900, 1905, 1890, 1910))

	assert.False(t, s.ApplyTick(models.Tick{Bid: models.Float(1)}))
	assert.False(t, s.ApplyTick(models.Tick{Symbol: "  "}))
	assert.False(t, s.ApplyTick(models.Tick{Symbol: "GOLD"}))
	assert.False(t, s.ApplyTick(models.Tick{Symbol: "GOLD", Bid: models.Float(math.NaN())}))

	q, _ := s.Quote("GOLD")
	assert.Equal(t, 1900.0, q.Bid)

	applied, rejected := s.Stats()
	assert.Equal(t, uint64(1), applied)
	assert.Equal(t, uint64(4), rejected)
}

func TestStore_SymbolsAreCaseInsensitive(t *testing.T) {
	s := NewStore()
	s.ApplyTick(models.Tick{Symbol: "gold", Bid: models.Float(1900)})

	q, ok := s.Quote("GOLD")
	require.True(t, ok)
	assert.Equal(t, "GOLD", q.Symbol)
	assert.Equal(t, []string{"GOLD"}, s.Symbols())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.ApplyTick(models.Tick{Symbol: "GOLD", Bid: models.Float(1900)})

	snap := s.Snapshot()
	s.ApplyTick(models.Tick{Symbol: "GOLD", Bid: models.Float(1950)})

	q, ok := snap.Quote("gold")
	require.True(t, ok)
	assert.Equal(t, 1900.0, q.Bid)
}

func TestStore_ConsumeDrainsChannel(t *testing.T) {
	s := NewStore()
	ch := make(chan models.Tick, 4)
	ch <- models.Tick{Symbol: "GOLD", Bid: models.Float(1900)}
	ch <- models.Tick{Symbol: "GOLD", Bid: models.Float(1901)}
	ch <- models.Tick{Symbol: ""}
	ch <- models.Tick{Symbol: "SILVER", Ask: models.Float(24)}
	close(ch)

	done := make(chan struct{})
	go func() {
		s.Consume(context.Background(), ch)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Consume did not return after channel close")
	}

	q, _ := s.Quote("GOLD")
	assert.Equal(t, 1901.0, q.Bid)
	assert.Equal(t, models.DirectionUp, q.BidDirection)
	_, ok := s.Quote("SILVER")
	assert.True(t, ok)
}

func TestStore_ConsumeStopsOnCancel(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Consume(ctx, make(chan models.Tick))
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Consume did not return after cancel")
	}
}

// Readers must never see a quote whose fields come from different ticks.
func TestStore_ConcurrentReadersSeeWholeTicks(t *testing.T) {
	s := NewStore()
	s.ApplyTick(fullTick("GOLD", 0, 0, 0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				q, _ := s.Quote("GOLD")
				if q.Ask != q.Bid+1 && !(q.Bid == 0 && q.Ask == 0) {
					t.Errorf("torn quote: bid=%v ask=%v", q.Bid, q.Ask)
					return
				}
			}
		}()
	}

	for i := 1; i <= 5000; i++ {
		v := float64(i)
		s.ApplyTick(fullTick("GOLD", v, v+1, v, v))
	}
	cancel()
	wg.Wait()
}
