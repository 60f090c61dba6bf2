package enrich

import "time"

const (
	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// Observer receives structured enrichment events. Implementations must be safe
// for concurrent use.
type Observer interface {
	ObserveAdapterCall(adapter string, outcome string, dur time.Duration)
	ObserveRun(stats Stats, dur time.Duration, err error)
}

type NopObserver struct{}

func (NopObserver) ObserveAdapterCall(string, string, time.Duration) {}
func (NopObserver) ObserveRun(Stats, time.Duration, error)           {}

// MultiObserver fans events out to every non-nil observer.
type MultiObserver []Observer

func (m MultiObserver) ObserveAdapterCall(adapter string, outcome string, dur time.Duration) {
	for _, o := range m {
		if o != nil {
			o.ObserveAdapterCall(adapter, outcome, dur)
		}
	}
}

func (m MultiObserver) ObserveRun(stats Stats, dur time.Duration, err error) {
	for _, o := range m {
		if o != nil {
			o.ObserveRun(stats, dur, err)
		}
	}
}
