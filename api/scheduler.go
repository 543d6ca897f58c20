/*
scheduler.go - Background duty watcher

PURPOSE:
  Periodically recomputes the on-duty staff set and logs transitions, so
  operators can see shift handovers in the server log without polling the
  API. The watcher only observes; assignment always consults the resolver
  directly at submission time.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Compares each resolution with the previous one, logs on change
  - Warming the cached resolver as a side effect

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 minute)
  - Enabled: Whether the watcher is active (default: true)

USAGE:
  watcher := NewDutyWatcher(duty)
  watcher.Start()
  // ... later
  watcher.Stop()

SEE ALSO:
  - roster/resolver.go: the computation being watched
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fajarisfan/sirs-rme-pro/roster"
	"github.com/fajarisfan/sirs-rme-pro/workflow"
)

// DutyWatcher logs on-duty transitions as shifts hand over.
type DutyWatcher struct {
	Duty          workflow.DutyResolver
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex

	last     roster.Result
	haveLast bool
}

// NewDutyWatcher creates a watcher over the given resolver.
func NewDutyWatcher(duty workflow.DutyResolver) *DutyWatcher {
	return &DutyWatcher{
		Duty:          duty,
		CheckInterval: 1 * time.Minute,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the watcher.
func (dw *DutyWatcher) Start() {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if !dw.Enabled {
		logrus.Info("duty watcher disabled, not starting")
		return
	}

	dw.ticker = time.NewTicker(dw.CheckInterval)
	dw.wg.Add(1)

	go dw.run()

	logrus.WithField("interval", dw.CheckInterval).Info("duty watcher started")
}

// Stop stops the watcher.
func (dw *DutyWatcher) Stop() {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.ticker != nil {
		dw.ticker.Stop()
		close(dw.stop)
		dw.wg.Wait()
		logrus.Info("duty watcher stopped")
	}
}

func (dw *DutyWatcher) run() {
	defer dw.wg.Done()

	// Check immediately on start
	dw.check()

	for {
		select {
		case <-dw.ticker.C:
			dw.check()
		case <-dw.stop:
			return
		}
	}
}

func (dw *DutyWatcher) check() {
	res, err := dw.Duty.ActiveStaff(context.Background(), time.Now())
	if err != nil {
		logrus.WithError(err).Warn("duty watcher resolution failed")
		return
	}

	if dw.haveLast && sameResult(dw.last, res) {
		return
	}

	logrus.WithFields(logrus.Fields{
		"status": res.Status,
		"staff":  toStaffStrings(res.Staff),
	}).Info("on-duty staff changed")

	dw.last = res
	dw.haveLast = true
}

func sameResult(a, b roster.Result) bool {
	if a.Status != b.Status || len(a.Staff) != len(b.Staff) {
		return false
	}
	for i := range a.Staff {
		if a.Staff[i] != b.Staff[i] {
			return false
		}
	}
	return true
}
