package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/oyster-ai/oyster-backend/internal/db"
	"github.com/oyster-ai/oyster-backend/internal/domain/course"
	"github.com/oyster-ai/oyster-backend/internal/enrich"
	"github.com/oyster-ai/oyster-backend/internal/platform/apierr"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
	"github.com/oyster-ai/oyster-backend/internal/repos"
	"github.com/oyster-ai/oyster-backend/internal/types"
)

type fakeEnricher struct {
	res *enrich.Result
	err error
}

func (f *fakeEnricher) Enrich(context.Context, enrich.Request) (*enrich.Result, error) {
	return f.res, f.err
}

func (f *fakeEnricher) Capabilities() enrich.Capabilities {
	return enrich.Capabilities{LLM: true, Speech: true}
}

type fakeAudioStore struct {
	err  error
	keys []string
}

func (f *fakeAudioStore) Upload(_ context.Context, key string, _ []byte) (string, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.oyster.ai/" + key, nil
}

func newRunRepo(t *testing.T) repos.EnrichmentRunRepo {
	t.Helper()
	svc, err := db.Open(logger.NewNop(), db.Config{SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return repos.NewEnrichmentRunRepo(svc.DB(), logger.NewNop())
}

func newService(t *testing.T, enricher Enricher, audio AudioStore, runs repos.EnrichmentRunRepo) EnrichmentService {
	t.Helper()
	var recorder *RunRecorder
	if runs != nil {
		var err error
		recorder, err = NewRunRecorder(logger.NewNop(), runs)
		if err != nil {
			t.Fatalf("NewRunRecorder: %v", err)
		}
	}
	svc, err := NewEnrichmentService(logger.NewNop(), enricher, audio, recorder, runs, "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewEnrichmentService: %v", err)
	}
	return svc
}

func sampleResult() *enrich.Result {
	audio := "bXAz"
	return &enrich.Result{
		Course: course.EnrichedCourse{
			Syllabus:  course.EnrichedOutline{Sections: []course.EnrichedSection{}},
			Summary:   "A course.",
			AudioData: &audio,
		},
		Audio: []byte("mp3"),
		Stats: enrich.Stats{Sections: 1, Topics: 2, Questions: 10, AudioGenerated: true},
	}
}

func TestEnrichUploadsAudioAndRecordsRun(t *testing.T) {
	runs := newRunRepo(t)
	audio := &fakeAudioStore{}
	svc := newService(t, &fakeEnricher{res: sampleResult()}, audio, runs)

	out, err := svc.Enrich(context.Background(), enrich.Request{UserRequest: "learn go"})
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	wantKey := "narration/" + out.RunID.String() + ".mp3"
	if len(audio.keys) != 1 || audio.keys[0] != wantKey {
		t.Fatalf("upload keys: want=[%s] got=%v", wantKey, audio.keys)
	}
	if out.Result.Course.AudioURL != "https://cdn.oyster.ai/"+wantKey {
		t.Fatalf("audioUrl: got=%q", out.Result.Course.AudioURL)
	}
	if out.Result.Course.AudioData == nil {
		t.Fatalf("inline audio must survive the upload")
	}

	run, err := svc.GetRun(context.Background(), out.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != types.EnrichmentRunSucceeded || run.Questions != 10 || !run.AudioGenerated {
		t.Fatalf("run: got=%+v", run)
	}
	if run.AudioURL != out.Result.Course.AudioURL {
		t.Fatalf("run audio url: want=%q got=%q", out.Result.Course.AudioURL, run.AudioURL)
	}
	if run.UserRequestHash == "" || strings.Contains(string(run.Metadata), "learn go") {
		t.Fatalf("user request must be stored hashed only: %+v", run)
	}
}

func TestEnrichUploadFailureKeepsInlineAudio(t *testing.T) {
	svc := newService(t, &fakeEnricher{res: sampleResult()}, &fakeAudioStore{err: errors.New("bucket down")}, nil)
	out, err := svc.Enrich(context.Background(), enrich.Request{UserRequest: "x"})
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if out.Result.Course.AudioURL != "" || out.Result.Course.AudioData == nil {
		t.Fatalf("want inline audio only, got url=%q", out.Result.Course.AudioURL)
	}
}

func TestEnrichSkipsUploadWithoutAudio(t *testing.T) {
	res := sampleResult()
	res.Audio = nil
	res.Course.AudioData = nil
	audio := &fakeAudioStore{}
	svc := newService(t, &fakeEnricher{res: res}, audio, nil)
	if _, err := svc.Enrich(context.Background(), enrich.Request{UserRequest: "x"}); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if len(audio.keys) != 0 {
		t.Fatalf("uploads: want=0 got=%d", len(audio.keys))
	}
}

func TestEnrichRecordsInternalFailure(t *testing.T) {
	runs := newRunRepo(t)
	svc := newService(t, &fakeEnricher{err: enrich.ErrInternal}, nil, runs)

	if _, err := svc.Enrich(context.Background(), enrich.Request{UserRequest: "x"}); !errors.Is(err, enrich.ErrInternal) {
		t.Fatalf("want ErrInternal got=%v", err)
	}
	list, err := svc.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(list) != 1 || list[0].Status != types.EnrichmentRunFailed || list[0].Error == "" {
		t.Fatalf("runs: got=%+v", list)
	}
}

func TestEnrichDoesNotRecordMissingInput(t *testing.T) {
	runs := newRunRepo(t)
	svc := newService(t, &fakeEnricher{err: enrich.ErrMissingInput}, nil, runs)

	if _, err := svc.Enrich(context.Background(), enrich.Request{}); !errors.Is(err, enrich.ErrMissingInput) {
		t.Fatalf("want ErrMissingInput got=%v", err)
	}
	list, err := svc.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("runs: want=0 got=%d", len(list))
	}
}

func TestRunLookupErrors(t *testing.T) {
	svc := newService(t, &fakeEnricher{res: sampleResult()}, nil, newRunRepo(t))
	if _, err := svc.GetRun(context.Background(), uuid.New()); apierr.StatusOf(err) != 404 {
		t.Fatalf("missing run: want 404 got=%v", err)
	}

	noHistory := newService(t, &fakeEnricher{res: sampleResult()}, nil, nil)
	if _, err := noHistory.ListRuns(context.Background(), 10); !errors.Is(err, ErrRunHistoryDisabled) {
		t.Fatalf("want ErrRunHistoryDisabled got=%v", err)
	}
	if apierr.StatusOf(ErrRunHistoryDisabled) != 503 {
		t.Fatalf("history disabled status: got=%d", apierr.StatusOf(ErrRunHistoryDisabled))
	}
}
