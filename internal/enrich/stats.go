package enrich

import (
	"sync/atomic"

	"github.com/oyster-ai/oyster-backend/internal/domain/course"
)

// Stats summarizes one enrichment run. Counts derive from the enriched tree, so
// the same tree always yields the same numbers.
type Stats struct {
	Sections          int  `json:"sections"`
	Subsections       int  `json:"subsections"`
	Topics            int  `json:"topics"`
	Resources         int  `json:"resources"`
	Questions         int  `json:"questions"`
	ResourceFailures  int  `json:"resourceFailures"`
	QuestionFailures  int  `json:"questionFailures"`
	SummaryFailed     bool `json:"summaryFailed"`
	AudioGenerated    bool `json:"audioGenerated"`
	AudioFailed       bool `json:"audioFailed"`
	CapstoneGenerated bool `json:"capstoneGenerated"`
	CapstoneFailed    bool `json:"capstoneFailed"`
}

func (s Stats) KeyValues() []interface{} {
	return []interface{}{
		"sections", s.Sections,
		"subsections", s.Subsections,
		"topics", s.Topics,
		"resources", s.Resources,
		"questions", s.Questions,
		"resource_failures", s.ResourceFailures,
		"question_failures", s.QuestionFailures,
		"summary_failed", s.SummaryFailed,
		"audio_generated", s.AudioGenerated,
		"audio_failed", s.AudioFailed,
		"capstone_generated", s.CapstoneGenerated,
		"capstone_failed", s.CapstoneFailed,
	}
}

// failureTally is shared by every topic of one run.
type failureTally struct {
	resources atomic.Int32
	questions atomic.Int32
}

func computeStats(tree course.EnrichedOutline, tally *failureTally) Stats {
	counts := tree.Counts()
	resources, questions := tree.Attachments()
	s := Stats{
		Sections:    counts.Sections,
		Subsections: counts.Subsections,
		Topics:      counts.Topics,
		Resources:   resources,
		Questions:   questions,
	}
	if tally != nil {
		s.ResourceFailures = int(tally.resources.Load())
		s.QuestionFailures = int(tally.questions.Load())
	}
	return s
}
