package scheduler

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// RefreshFunc is invoked once per cycle with the cycle's wall-clock time.
type RefreshFunc func(now time.Time)

type RefreshConfig struct {
	Interval  time.Duration // e.g. 1*time.Second
	OnRefresh RefreshFunc
}

// RefreshScheduler fires OnRefresh on a fixed cadence, independent of when
// quotes arrive.
type RefreshScheduler struct {
	cfg RefreshConfig
	log *log.Entry

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	cycles  uint64
}

func NewRefreshScheduler(cfg RefreshConfig) *RefreshScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 1 * time.Second
	}
	return &RefreshScheduler{
		cfg: cfg,
		log: log.WithField("component", "refresh"),
	}
}

func (s *RefreshScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn("already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	go func() {
		defer close(doneCh)

		// first frame immediately
		s.fire(time.Now())

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case now := <-ticker.C:
				s.fire(now)
			}
		}
	}()

	s.log.Infof("started (every %s)", s.cfg.Interval)
}

// Stop halts the cadence and waits for an in-flight cycle to finish, so no
// refresh fires after Stop returns.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.running = false
	doneCh := s.doneCh
	s.mu.Unlock()

	<-doneCh
	s.log.Info("stopped")
}

func (s *RefreshScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Cycles returns how many refreshes have fired.
func (s *RefreshScheduler) Cycles() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles
}

func (s *RefreshScheduler) fire(now time.Time) {
	s.mu.Lock()
	s.cycles++
	s.mu.Unlock()

	if s.cfg.OnRefresh != nil {
		s.cfg.OnRefresh(now)
	}
}
