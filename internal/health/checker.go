package health

import (
	"context"
	"sync"
	"time"
)

type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

type Probe interface {
	Name() string
	Check(ctx context.Context) error
}

type Result struct {
	Name    string        `json:"name"`
	Status  Status        `json:"status"`
	Error   string        `json:"error,omitempty"`
	Latency time.Duration `json:"latency_ns"`
}

type Report struct {
	Status  Status   `json:"status"`
	Results []Result `json:"checks"`
}

// Checker runs dependency probes concurrently with a per-probe timeout.
// During the start grace period every probe reports up, so orchestrators
// do not kill a process that is still warming its connections.
type Checker struct {
	probes  []Probe
	timeout time.Duration

	mu         sync.Mutex
	readyAfter time.Time
}

func NewChecker(timeout, gracePeriod time.Duration, probes ...Probe) *Checker {
	return &Checker{
		probes:     probes,
		timeout:    timeout,
		readyAfter: time.Now().Add(gracePeriod),
	}
}

func (c *Checker) inGrace() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().Before(c.readyAfter)
}

func (c *Checker) Check(ctx context.Context) Report {
	if c.inGrace() {
		return Report{Status: StatusUp}
	}

	results := make([]Result, len(c.probes))
	var wg sync.WaitGroup
	for i, probe := range c.probes {
		wg.Add(1)
		go func(i int, probe Probe) {
			defer wg.Done()
			probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			err := probe.Check(probeCtx)
			result := Result{
				Name:    probe.Name(),
				Status:  StatusUp,
				Latency: time.Since(start),
			}
			if err != nil {
				result.Status = StatusDown
				result.Error = err.Error()
			}
			results[i] = result
		}(i, probe)
	}
	wg.Wait()

	report := Report{Status: StatusUp, Results: results}
	for _, r := range results {
		if r.Status == StatusDown {
			report.Status = StatusDown
			break
		}
	}
	return report
}
