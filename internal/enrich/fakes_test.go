package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oyster-ai/oyster-backend/internal/domain/course"
)

var errBoom = errors.New("boom")

type fakeLLM struct {
	mu sync.Mutex

	questionsErr func(user string) error
	summaryErr   error
	summary      string
	capstoneErr  error
	capstoneObj  map[string]any
	questionObj  func(user string) map[string]any
	panicOn      string
	delay        time.Duration

	jsonCalls atomic.Int32
	textCalls atomic.Int32
	users     []string
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	f.jsonCalls.Add(1)
	f.mu.Lock()
	f.users = append(f.users, user)
	f.mu.Unlock()
	if f.panicOn == schemaName {
		panic("llm exploded")
	}
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	switch schemaName {
	case "topic_questions":
		if f.questionsErr != nil {
			if err := f.questionsErr(user); err != nil {
				return nil, err
			}
		}
		if f.questionObj != nil {
			return f.questionObj(user), nil
		}
		return questionsObj(5), nil
	case "capstone_project":
		if f.capstoneErr != nil {
			return nil, f.capstoneErr
		}
		if f.capstoneObj != nil {
			return f.capstoneObj, nil
		}
		return capstoneObj(), nil
	}
	return nil, fmt.Errorf("unexpected schema %q", schemaName)
}

func (f *fakeLLM) GenerateText(ctx context.Context, system string, user string) (string, error) {
	f.textCalls.Add(1)
	if f.summaryErr != nil {
		return "", f.summaryErr
	}
	if f.summary != "" {
		return f.summary, nil
	}
	return "A friendly course summary.", nil
}

func questionsObj(n int) map[string]any {
	qs := make([]any, 0, n)
	for i := 0; i < n; i++ {
		qs = append(qs, map[string]any{
			"question":    fmt.Sprintf("Q%d?", i+1),
			"answer":      fmt.Sprintf("A%d", i+1),
			"searchQuery": fmt.Sprintf("query %d", i+1),
		})
	}
	return map[string]any{"questions": qs}
}

func capstoneObj() map[string]any {
	return map[string]any{
		"title":              "Build a thing",
		"description":        "Tie it all together",
		"objectives":         []any{"apply skills"},
		"requirements":       []any{"laptop"},
		"milestones":         []any{map[string]any{"title": "M1", "description": "start"}},
		"deliverables":       []any{"repo"},
		"evaluationCriteria": []any{"works"},
		"estimatedDuration":  "2 weeks",
	}
}

type fakeSearch struct {
	fn    func(query string) ([]course.VideoResource, error)
	calls atomic.Int32
}

func (f *fakeSearch) Search(ctx context.Context, query string) ([]course.VideoResource, error) {
	f.calls.Add(1)
	if f.fn == nil {
		return []course.VideoResource{{Title: "V-" + query, URL: "https://example.com/" + query}}, nil
	}
	return f.fn(query)
}

type fakeSpeech struct {
	err   error
	calls atomic.Int32
	mu    sync.Mutex
	texts []string
}

func (f *fakeSpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3:" + text), nil
}

type recordingObserver struct {
	mu      sync.Mutex
	calls   map[string]map[string]int
	runs    int
	lastRun Stats
	lastErr error
}

func (r *recordingObserver) ObserveAdapterCall(adapter string, outcome string, dur time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string]map[string]int{}
	}
	if r.calls[adapter] == nil {
		r.calls[adapter] = map[string]int{}
	}
	r.calls[adapter][outcome]++
}

func (r *recordingObserver) ObserveRun(stats Stats, dur time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	r.lastRun = stats
	r.lastErr = err
}

func (r *recordingObserver) count(adapter, outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[adapter][outcome]
}

func sampleOutline() *course.Outline {
	return &course.Outline{Sections: []course.Section{
		{
			Title: "Basics",
			Subsections: []course.Subsection{
				{Title: "Start", Topics: []course.Topic{
					{Title: "Intro", Description: "first", SearchQuery: "Intro"},
					{Title: "Advanced", Description: "second", SearchQuery: "Advanced"},
				}},
			},
		},
	}}
}

func wideOutline() *course.Outline {
	o := &course.Outline{}
	for s := 0; s < 3; s++ {
		sec := course.Section{Title: fmt.Sprintf("S%d", s)}
		for u := 0; u < s+1; u++ {
			sub := course.Subsection{Title: fmt.Sprintf("S%d.%d", s, u)}
			for t := 0; t < u+2; t++ {
				sub.Topics = append(sub.Topics, course.Topic{
					Title:       fmt.Sprintf("T%d.%d.%d", s, u, t),
					SearchQuery: fmt.Sprintf("q%d%d%d", s, u, t),
				})
			}
			sec.Subsections = append(sec.Subsections, sub)
		}
		o.Sections = append(o.Sections, sec)
	}
	return o
}
