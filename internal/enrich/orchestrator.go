// Package enrich decorates a course outline with video resources, self-check
// questions, a narrated summary and a capstone project.
//
// Every external call is best-effort. Only missing input or an internal fault
// fails a run; adapter failures degrade to empty, placeholder or absent fields.
package enrich

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/oyster-ai/oyster-backend/internal/domain/course"
	"github.com/oyster-ai/oyster-backend/internal/platform/logger"
)

// SummaryFallback replaces the narrative summary when generation fails.
const SummaryFallback = "summary generation failed"

type Request struct {
	Syllabus    *course.Outline
	UserRequest string
}

type Result struct {
	Course course.EnrichedCourse
	// Audio holds the raw narration bytes; Course.AudioData is its base64 form.
	Audio []byte
	Stats Stats
}

type Orchestrator struct {
	log      *logger.Logger
	adapters Adapters
	opts     Options
	gate     *gate
	tracer   trace.Tracer
}

// runInput is the read-only context shared by every branch of one run.
type runInput struct {
	userRequest string
	outlineJSON string
	log         *logger.Logger
	tally       *failureTally
}

func New(log *logger.Logger, adapters Adapters, opts Options) (*Orchestrator, error) {
	if log == nil {
		return nil, errors.New("enrich: logger required")
	}
	if adapters.LLM == nil {
		return nil, ErrLLMUnavailable
	}
	opts = opts.withDefaults()
	return &Orchestrator{
		log:      log.With("component", "Enrich"),
		adapters: adapters,
		opts:     opts,
		gate:     newGate(opts.AdapterConcurrency, opts.Observer),
		tracer:   otel.Tracer("github.com/oyster-ai/oyster-backend/internal/enrich"),
	}, nil
}

func (o *Orchestrator) Capabilities() Capabilities { return o.adapters.Capabilities() }

// Validate reports ErrMissingInput for an absent outline or blank request.
func (req Request) Validate() error {
	if req.Syllabus == nil || strings.TrimSpace(req.UserRequest) == "" {
		return ErrMissingInput
	}
	return nil
}

// Enrich runs the full pipeline for one outline.
func (o *Orchestrator) Enrich(ctx context.Context, req Request) (res *Result, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if o.adapters.LLM == nil {
		return nil, ErrLLMUnavailable
	}

	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "enrich.course")
	var stats Stats
	defer func() {
		if rec := recover(); rec != nil {
			res = nil
			err = fmt.Errorf("%w: %v", ErrInternal, rec)
			o.log.Error("Enrichment panicked", "panic", rec, "stack", string(debug.Stack()))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		o.opts.Observer.ObserveRun(stats, time.Since(start), err)
	}()

	caps := o.adapters.Capabilities()
	counts := req.Syllabus.Counts()
	span.SetAttributes(
		attribute.Int("enrich.sections", counts.Sections),
		attribute.Int("enrich.topics", counts.Topics),
		attribute.Bool("enrich.video_search", caps.VideoSearch),
		attribute.Bool("enrich.speech", caps.Speech),
	)

	run := &runInput{
		userRequest: strings.TrimSpace(req.UserRequest),
		outlineJSON: req.Syllabus.JSON(),
		log:         o.log,
		tally:       &failureTally{},
	}
	run.log.Info("Enriching course",
		"sections", counts.Sections,
		"subsections", counts.Subsections,
		"topics", counts.Topics,
		"video_search", caps.VideoSearch,
		"speech", caps.Speech,
	)

	treeCtx, treeSpan := o.tracer.Start(ctx, "enrich.tree")
	tree, err := o.enrichOutline(treeCtx, run, *req.Syllabus)
	treeSpan.End()
	if err != nil {
		o.log.Error("Tree enrichment failed", "error", err)
		return nil, err
	}

	var (
		wg            sync.WaitGroup
		summary       string
		summaryFailed bool
		audio         []byte
		audioFailed   bool
		capstone      *course.Capstone
		tailErr       error
		tailMu        sync.Mutex
	)
	fail := func(e error) {
		tailMu.Lock()
		if tailErr == nil {
			tailErr = e
		}
		tailMu.Unlock()
	}
	guard := func(stage string) {
		if rec := recover(); rec != nil {
			o.log.Error("Enrichment stage panicked", "stage", stage, "panic", rec)
			fail(fmt.Errorf("%w: %s: %v", ErrInternal, stage, rec))
		}
	}

	// Summary then audio: audio narrates exactly the summary string.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer guard("summary")
		sctx, sspan := o.tracer.Start(ctx, "enrich.summary")
		s, err := o.generateSummary(sctx, run)
		sspan.End()
		if err != nil {
			summaryFailed = true
			s = SummaryFallback
			o.log.Warn("Summary generation failed; using placeholder", "error", err)
		}
		summary = s

		if o.adapters.Speech == nil {
			return
		}
		actx, aspan := o.tracer.Start(ctx, "enrich.audio")
		b, err := o.synthesize(actx, summary)
		aspan.End()
		if err != nil {
			audioFailed = true
			o.log.Warn("Audio synthesis failed; continuing without audio", "error", err)
			return
		}
		audio = b
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer guard("capstone")
		cctx, cspan := o.tracer.Start(ctx, "enrich.capstone")
		c, err := o.generateCapstone(cctx, run)
		cspan.End()
		if err != nil {
			o.log.Warn("Capstone generation failed; continuing without capstone", "error", err)
			return
		}
		capstone = c
	}()

	wg.Wait()
	if tailErr != nil {
		return nil, tailErr
	}

	out := &Result{
		Course: course.EnrichedCourse{
			Syllabus: tree,
			Summary:  summary,
			Capstone: capstone,
		},
		Audio: audio,
	}
	if len(audio) > 0 {
		encoded := base64.StdEncoding.EncodeToString(audio)
		out.Course.AudioData = &encoded
	}

	stats = computeStats(tree, run.tally)
	stats.SummaryFailed = summaryFailed
	stats.AudioGenerated = out.Course.AudioData != nil
	stats.AudioFailed = audioFailed
	stats.CapstoneGenerated = capstone != nil
	stats.CapstoneFailed = capstone == nil
	out.Stats = stats

	o.log.Info("Course enrichment complete", append(stats.KeyValues(), "duration_ms", time.Since(start).Milliseconds())...)
	return out, nil
}
