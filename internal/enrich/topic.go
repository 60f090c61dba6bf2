package enrich

import (
	"context"
	"sync"

	"github.com/oyster-ai/oyster-backend/internal/domain/course"
)

// enrichTopic never fails: each branch degrades to an empty slice on error.
// Resources and questions are always non-nil so they encode as [] not null.
func (o *Orchestrator) enrichTopic(ctx context.Context, run *runInput, topic course.Topic) course.EnrichedTopic {
	out := course.EnrichedTopic{
		Topic:     topic,
		Resources: []course.VideoResource{},
		Questions: []course.TopicQuestion{},
	}

	var wg sync.WaitGroup
	if o.adapters.VideoSearch != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer o.recoverBranch(run, "resources", topic.Title)
			res, err := o.fetchResources(ctx, topic)
			if err != nil {
				run.tally.resources.Add(1)
				run.log.Warn("Resource fetch failed; continuing without resources", "topic", topic.Title, "error", err)
				return
			}
			if len(res) == 0 {
				run.log.Debug("No resources found", "topic", topic.Title)
				return
			}
			out.Resources = res
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer o.recoverBranch(run, "questions", topic.Title)
		qs, err := o.generateQuestions(ctx, run, topic)
		if err != nil {
			run.tally.questions.Add(1)
			run.log.Warn("Question generation failed; continuing without questions", "topic", topic.Title, "error", err)
			return
		}
		out.Questions = qs
	}()

	wg.Wait()
	return out
}

// recoverBranch keeps a topic branch from taking down the run. Adapter panics are
// already converted by the gate; anything caught here is a local fault.
func (o *Orchestrator) recoverBranch(run *runInput, branch string, topic string) {
	if rec := recover(); rec != nil {
		if branch == "resources" {
			run.tally.resources.Add(1)
		} else {
			run.tally.questions.Add(1)
		}
		run.log.Error("Topic branch panicked", "branch", branch, "topic", topic, "panic", rec)
	}
}
