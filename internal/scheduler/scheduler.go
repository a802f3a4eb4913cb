// Package scheduler runs the background probe loop and the check retention
// sweeper.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/pulseboard/pulseboard/internal/model"
	"github.com/pulseboard/pulseboard/internal/prober"
	"github.com/pulseboard/pulseboard/internal/store"
)

// ProbeFunc executes one HTTP probe. Injectable for testing.
type ProbeFunc func(ctx context.Context, url string, timeout time.Duration, verifyTLS bool) prober.Result

// Config configures the Scheduler.
type Config struct {
	Store       *store.Store
	Probe       ProbeFunc // defaults to prober.Probe
	Tick        time.Duration
	Concurrency int // max concurrent probes
}

// Scheduler periodically scans for due targets and fans probes out under a
// global concurrency cap. One instance per database: the due rule plus
// serial probing keeps at most one probe per target in flight.
type Scheduler struct {
	store    *store.Store
	probe    ProbeFunc
	tick     time.Duration
	sem      chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// Targets with a probe currently in flight, so a slow probe spanning
	// ticks is never dispatched twice.
	inFlight *xsync.Map[string, struct{}]

	// test hook: called at the beginning of each tick.
	tickHook func()
}

// New creates a Scheduler.
func New(cfg Config) *Scheduler {
	tick := cfg.Tick
	if tick <= 0 {
		tick = 60 * time.Second
	}
	conc := cfg.Concurrency
	if conc <= 0 {
		conc = 20
	}
	probe := cfg.Probe
	if probe == nil {
		probe = prober.Probe
	}
	return &Scheduler{
		store:    cfg.Store,
		probe:    probe,
		tick:     tick,
		sem:      make(chan struct{}, conc),
		stopCh:   make(chan struct{}),
		inFlight: xsync.NewMap[string, struct{}](),
	}
}

// Start launches the background probe loop.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
}

// Stop signals the loop to stop and waits for in-flight probes to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Scheduler) loop() {
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C // drain initial fire

	for {
		if s.tickHook != nil {
			s.tickHook()
		}
		s.RunOnce()

		timer.Reset(s.tick)
		select {
		case <-s.stopCh:
			return
		case <-timer.C:
		}
	}
}

// RunOnce executes a single probe cycle: load due targets, probe them under
// the concurrency cap, and wait for this cycle's probes to complete.
// Per-target failures are logged and never abort the cycle.
func (s *Scheduler) RunOnce() {
	due, err := s.dueTargets(time.Now().UTC())
	if err != nil {
		log.Printf("[scheduler] due scan failed: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	var cycle sync.WaitGroup
	for _, target := range due {
		select {
		case <-s.stopCh:
			cycle.Wait()
			return
		default:
		}

		if _, loaded := s.inFlight.LoadOrStore(target.ID, struct{}{}); loaded {
			continue // previous probe for this target still running
		}

		// Acquire sem or bail on shutdown.
		select {
		case s.sem <- struct{}{}:
		case <-s.stopCh:
			s.inFlight.Delete(target.ID)
			cycle.Wait()
			return
		}

		s.wg.Add(1)
		cycle.Add(1)
		go func(t model.Target) {
			defer s.wg.Done()
			defer cycle.Done()
			defer func() { <-s.sem }()
			defer s.inFlight.Delete(t.ID)
			s.checkTarget(t)
		}(target)
	}
	cycle.Wait()
}

// dueTargets returns the enabled targets whose interval has elapsed since
// their last check (or that have never been checked).
func (s *Scheduler) dueTargets(now time.Time) ([]model.Target, error) {
	candidates, err := s.store.ListEnabledTargetsWithLastCheck()
	if err != nil {
		return nil, err
	}

	var due []model.Target
	for _, c := range candidates {
		if c.LastChecked == nil {
			due = append(due, c.Target)
			continue
		}
		if now.Sub(*c.LastChecked) >= time.Duration(c.Target.IntervalS)*time.Second {
			due = append(due, c.Target)
		}
	}
	return due, nil
}

// checkTarget probes one target and records the outcome. A probe failure is
// an observation, not an error; only store failures are logged.
func (s *Scheduler) checkTarget(t model.Target) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[scheduler] panic checking target target_id=%s: %v", t.ID, r)
		}
	}()

	ctx := context.Background()
	result := s.probe(ctx, t.URL, time.Duration(t.TimeoutS)*time.Second, t.VerifyTLS)

	check := &model.Check{
		ID:           uuid.NewString(),
		TargetID:     t.ID,
		CheckedAt:    time.Now().UTC(),
		Up:           result.Up,
		LatencyMS:    result.LatencyMS,
		HTTPStatus:   result.HTTPStatus,
		ErrorType:    result.ErrorKind,
		ErrorMessage: result.ErrorMessage,
	}
	if err := s.store.InsertCheck(check); err != nil {
		log.Printf("[scheduler] failed to record check target_id=%s: %v", t.ID, err)
	}
}
