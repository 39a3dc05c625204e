package metrics

import "time"

type Statter interface {
	Inc(metric string, value int64)
	Gauge(metric string, value int64)
	TimingDuration(metric string, value time.Duration)
}

// NoopStatter satisfies Statter for callers that have no metrics sink wired.
type NoopStatter struct{}

func (NoopStatter) Inc(string, int64)                    {}
func (NoopStatter) Gauge(string, int64)                  {}
func (NoopStatter) TimingDuration(string, time.Duration) {}
