package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oyster-ai/oyster-backend/internal/domain/course"
	"github.com/oyster-ai/oyster-backend/internal/learning/prompts"
)

var validate = validator.New()

type questionSet struct {
	Questions []course.TopicQuestion `json:"questions" validate:"dive"`
}

// decodeInto round-trips an LLM JSON object into dst and validates struct tags.
func decodeInto(obj map[string]any, dst any) error {
	if obj == nil {
		return errors.New("empty structured response")
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("re-encode response: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("validate response: %w", err)
	}
	return nil
}

func (o *Orchestrator) generateQuestions(ctx context.Context, run *runInput, topic course.Topic) ([]course.TopicQuestion, error) {
	p, err := prompts.Build(prompts.PromptTopicQuestions, prompts.Input{
		UserRequest:      run.userRequest,
		OutlineJSON:      run.outlineJSON,
		TopicTitle:       topic.Title,
		TopicDescription: topic.Description,
		TopicQuery:       topic.SearchQuery,
		QuestionCount:    prompts.QuestionsPerTopic,
	})
	if err != nil {
		return nil, err
	}

	var out []course.TopicQuestion
	err = o.gate.call(ctx, AdapterQuestions, o.opts.AdapterTimeout, func(ctx context.Context) (bool, error) {
		obj, err := o.adapters.LLM.GenerateJSON(ctx, p.System, p.User, p.SchemaName, p.Schema)
		if err != nil {
			return false, err
		}
		var set questionSet
		if err := decodeInto(obj, &set); err != nil {
			return false, err
		}
		if len(set.Questions) != prompts.QuestionsPerTopic {
			return false, fmt.Errorf("want %d questions, got %d", prompts.QuestionsPerTopic, len(set.Questions))
		}
		out = set.Questions
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Orchestrator) fetchResources(ctx context.Context, topic course.Topic) ([]course.VideoResource, error) {
	query := strings.TrimSpace(topic.SearchQuery)
	if query == "" {
		query = strings.TrimSpace(topic.Title)
	}
	var out []course.VideoResource
	err := o.gate.call(ctx, AdapterVideoSearch, o.opts.AdapterTimeout, func(ctx context.Context) (bool, error) {
		res, err := o.adapters.VideoSearch.Search(ctx, query)
		if err != nil {
			return false, err
		}
		out = res
		return len(res) == 0, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Orchestrator) generateSummary(ctx context.Context, run *runInput) (string, error) {
	p, err := prompts.Build(prompts.PromptCourseSummary, prompts.Input{
		UserRequest: run.userRequest,
		OutlineJSON: run.outlineJSON,
	})
	if err != nil {
		return "", err
	}
	var summary string
	err = o.gate.call(ctx, AdapterSummary, o.opts.AdapterTimeout, func(ctx context.Context) (bool, error) {
		text, err := o.adapters.LLM.GenerateText(ctx, p.System, p.User)
		if err != nil {
			return false, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return false, errors.New("empty summary")
		}
		summary = text
		return false, nil
	})
	if err != nil {
		return "", err
	}
	return summary, nil
}

func (o *Orchestrator) synthesize(ctx context.Context, text string) ([]byte, error) {
	var audio []byte
	err := o.gate.call(ctx, AdapterSpeech, o.opts.SpeechTimeout, func(ctx context.Context) (bool, error) {
		b, err := o.adapters.Speech.Synthesize(ctx, text)
		if err != nil {
			return false, err
		}
		if len(b) == 0 {
			return false, errors.New("empty audio")
		}
		audio = b
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return audio, nil
}

func (o *Orchestrator) generateCapstone(ctx context.Context, run *runInput) (*course.Capstone, error) {
	p, err := prompts.Build(prompts.PromptCapstoneProject, prompts.Input{
		UserRequest: run.userRequest,
		OutlineJSON: run.outlineJSON,
	})
	if err != nil {
		return nil, err
	}
	var out *course.Capstone
	err = o.gate.call(ctx, AdapterCapstone, o.opts.AdapterTimeout, func(ctx context.Context) (bool, error) {
		obj, err := o.adapters.LLM.GenerateJSON(ctx, p.System, p.User, p.SchemaName, p.Schema)
		if err != nil {
			return false, err
		}
		var c course.Capstone
		if err := decodeInto(obj, &c); err != nil {
			return false, err
		}
		out = &c
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
