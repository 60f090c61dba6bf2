// Package course holds the course outline tree and its enriched counterpart.
//
// Outlines are produced upstream by syllabus generation and treated as read-only here.
// Enriched values mirror the outline shape exactly; enrichment only adds fields.
package course

import "encoding/json"

type Outline struct {
	Sections []Section `json:"sections"`
}

type Section struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Subsections []Subsection `json:"subsections"`
}

type Subsection struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Topics      []Topic `json:"topics"`
}

type Topic struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SearchQuery string `json:"searchQuery"`
}

type VideoResource struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

type TopicQuestion struct {
	Question    string `json:"question" validate:"required"`
	Answer      string `json:"answer" validate:"required"`
	SearchQuery string `json:"searchQuery"`
}

type EnrichedTopic struct {
	Topic
	Resources []VideoResource `json:"resources"`
	Questions []TopicQuestion `json:"questions"`
}

type EnrichedSubsection struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Topics      []EnrichedTopic `json:"topics"`
}

type EnrichedSection struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Subsections []EnrichedSubsection `json:"subsections"`
}

type EnrichedOutline struct {
	Sections []EnrichedSection `json:"sections"`
}

type Milestone struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

type Capstone struct {
	Title              string      `json:"title" validate:"required"`
	Description        string      `json:"description" validate:"required"`
	Objectives         []string    `json:"objectives" validate:"min=1"`
	Requirements       []string    `json:"requirements"`
	Milestones         []Milestone `json:"milestones" validate:"dive"`
	Deliverables       []string    `json:"deliverables"`
	EvaluationCriteria []string    `json:"evaluationCriteria"`
	EstimatedDuration  string      `json:"estimatedDuration"`
}

// EnrichedCourse is the full result of one enrichment call. AudioData is base64
// MP3 derived from Summary and is nil when speech is unavailable or failed.
type EnrichedCourse struct {
	Syllabus  EnrichedOutline `json:"syllabus"`
	Summary   string          `json:"summary"`
	AudioData *string         `json:"audioData"`
	AudioURL  string          `json:"audioUrl,omitempty"`
	Capstone  *Capstone       `json:"capstone"`
}

type Counts struct {
	Sections    int `json:"sections"`
	Subsections int `json:"subsections"`
	Topics      int `json:"topics"`
}

func (o Outline) Counts() Counts {
	c := Counts{Sections: len(o.Sections)}
	for _, s := range o.Sections {
		c.Subsections += len(s.Subsections)
		for _, sub := range s.Subsections {
			c.Topics += len(sub.Topics)
		}
	}
	return c
}

func (o EnrichedOutline) Counts() Counts {
	c := Counts{Sections: len(o.Sections)}
	for _, s := range o.Sections {
		c.Subsections += len(s.Subsections)
		for _, sub := range s.Subsections {
			c.Topics += len(sub.Topics)
		}
	}
	return c
}

// Attachments totals the resources and questions attached across every topic.
func (o EnrichedOutline) Attachments() (resources int, questions int) {
	for _, s := range o.Sections {
		for _, sub := range s.Subsections {
			for _, t := range sub.Topics {
				resources += len(t.Resources)
				questions += len(t.Questions)
			}
		}
	}
	return resources, questions
}

// JSON renders the outline for prompt embedding.
func (o Outline) JSON() string {
	b, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// SameShape reports whether e has the section/subsection/topic counts and order of o.
func SameShape(o Outline, e EnrichedOutline) bool {
	if len(o.Sections) != len(e.Sections) {
		return false
	}
	for i, s := range o.Sections {
		es := e.Sections[i]
		if s.Title != es.Title || len(s.Subsections) != len(es.Subsections) {
			return false
		}
		for j, sub := range s.Subsections {
			esub := es.Subsections[j]
			if sub.Title != esub.Title || len(sub.Topics) != len(esub.Topics) {
				return false
			}
			for k, t := range sub.Topics {
				if t != esub.Topics[k].Topic {
					return false
				}
			}
		}
	}
	return true
}
