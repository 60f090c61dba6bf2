package course

import (
	"encoding/json"
	"strings"
	"testing"
)

func sampleOutline() Outline {
	return Outline{Sections: []Section{
		{Title: "S1", Subsections: []Subsection{
			{Title: "A", Topics: []Topic{{Title: "Intro"}, {Title: "Advanced"}}},
			{Title: "B", Topics: []Topic{{Title: "Deep"}}},
		}},
		{Title: "S2", Subsections: []Subsection{{Title: "C"}}},
	}}
}

func TestOutlineCounts(t *testing.T) {
	got := sampleOutline().Counts()
	want := Counts{Sections: 2, Subsections: 3, Topics: 3}
	if got != want {
		t.Fatalf("counts: want=%+v got=%+v", want, got)
	}
}

func TestEnrichedTopicAlwaysSerializesArrays(t *testing.T) {
	et := EnrichedTopic{Topic: Topic{Title: "Intro"}, Resources: []VideoResource{}, Questions: []TopicQuestion{}}
	b, err := json.Marshal(et)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"resources":[]`) || !strings.Contains(s, `"questions":[]`) {
		t.Fatalf("unexpected json: %s", s)
	}
	if !strings.Contains(s, `"searchQuery":""`) {
		t.Fatalf("topic fields should be flattened: %s", s)
	}
}

func TestEnrichedCourseNullsWhenAbsent(t *testing.T) {
	b, err := json.Marshal(EnrichedCourse{Summary: "x"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"audioData":null`) || !strings.Contains(s, `"capstone":null`) {
		t.Fatalf("expected explicit nulls: %s", s)
	}
	if strings.Contains(s, "audioUrl") {
		t.Fatalf("audioUrl should be omitted when empty: %s", s)
	}
}

func TestSameShapeDetectsDrift(t *testing.T) {
	o := sampleOutline()
	e := EnrichedOutline{}
	for _, s := range o.Sections {
		es := EnrichedSection{Title: s.Title}
		for _, sub := range s.Subsections {
			esub := EnrichedSubsection{Title: sub.Title}
			for _, tp := range sub.Topics {
				esub.Topics = append(esub.Topics, EnrichedTopic{Topic: tp})
			}
			es.Subsections = append(es.Subsections, esub)
		}
		e.Sections = append(e.Sections, es)
	}
	if !SameShape(o, e) {
		t.Fatalf("expected identical shape")
	}
	e.Sections[0].Subsections[0].Topics[0], e.Sections[0].Subsections[0].Topics[1] =
		e.Sections[0].Subsections[0].Topics[1], e.Sections[0].Subsections[0].Topics[0]
	if SameShape(o, e) {
		t.Fatalf("expected reorder to be detected")
	}
}
