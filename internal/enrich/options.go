package enrich

import "time"

const (
	DefaultAdapterConcurrency = 8
	DefaultAdapterTimeout     = 60 * time.Second
	DefaultSpeechTimeout      = 2 * time.Minute
)

type Options struct {
	// AdapterConcurrency caps in-flight adapter calls across all runs.
	AdapterConcurrency int
	// AdapterTimeout bounds each LLM and video-search call.
	AdapterTimeout time.Duration
	// SpeechTimeout bounds one narration synthesis, which may span several requests.
	SpeechTimeout time.Duration
	Observer      Observer
}

func (o Options) withDefaults() Options {
	if o.AdapterConcurrency <= 0 {
		o.AdapterConcurrency = DefaultAdapterConcurrency
	}
	if o.AdapterTimeout <= 0 {
		o.AdapterTimeout = DefaultAdapterTimeout
	}
	if o.SpeechTimeout <= 0 {
		o.SpeechTimeout = DefaultSpeechTimeout
	}
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
	return o
}
