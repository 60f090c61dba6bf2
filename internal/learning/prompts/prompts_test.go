package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildTopicQuestionsRendersInputs(t *testing.T) {
	p, err := Build(PromptTopicQuestions, Input{
		UserRequest:   "learn go",
		OutlineJSON:   `{"sections":[]}`,
		TopicTitle:    "Goroutines",
		TopicQuery:    "go goroutines tutorial",
		QuestionCount: QuestionsPerTopic,
	})
	require.NoError(t, err)
	require.True(t, p.Structured())
	require.Equal(t, "topic_questions", p.SchemaName)
	require.Contains(t, p.User, "Goroutines")
	require.Contains(t, p.User, "exactly 5 questions")

	questions := p.Schema["properties"].(map[string]any)["questions"].(map[string]any)
	require.Equal(t, QuestionsPerTopic, questions["minItems"])
	require.Equal(t, QuestionsPerTopic, questions["maxItems"])
}

func TestBuildSummaryIsPlainText(t *testing.T) {
	p, err := Build(PromptCourseSummary, Input{UserRequest: "x", OutlineJSON: "{}"})
	require.NoError(t, err)
	require.False(t, p.Structured())
	require.Nil(t, p.Schema)
}

func TestBuildValidatesInputs(t *testing.T) {
	_, err := Build(PromptCapstoneProject, Input{OutlineJSON: "{}"})
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "UserRequest required"))

	_, err = Build(PromptTopicQuestions, Input{TopicTitle: "x"})
	require.Error(t, err)
}

func TestBuildUnknownPrompt(t *testing.T) {
	_, err := Build(PromptName("nope"), Input{})
	require.Error(t, err)
}

func TestCapstoneSchemaIsStrictCompatible(t *testing.T) {
	s := CapstoneSchema()
	props := s["properties"].(map[string]any)
	required := s["required"].([]string)
	require.Len(t, required, len(props))
	require.Equal(t, false, s["additionalProperties"])
}

func TestFingerprintStable(t *testing.T) {
	in := Input{UserRequest: "x", OutlineJSON: "{}"}
	a, err := Build(PromptCourseSummary, in)
	require.NoError(t, err)
	b, err := Build(PromptCourseSummary, in)
	require.NoError(t, err)
	require.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestMakeTemplateRejectsMalformedSpecs(t *testing.T) {
	_, err := MakeTemplate(Spec{Name: "x", Version: 0, System: "s", User: "u"})
	require.Error(t, err)

	_, err = MakeTemplate(Spec{Name: "x", Version: 1, SchemaName: "only_name", System: "s", User: "u"})
	require.ErrorContains(t, err, "set together")

	_, err = MakeTemplate(Spec{Name: "x", Version: 1, System: "{{ .Unclosed", User: "u"})
	require.ErrorContains(t, err, "system template parse")
}

func TestTemplateRenderErrorSurfaces(t *testing.T) {
	tmpl, err := MakeTemplate(Spec{Name: "x", Version: 1, System: "s", User: "{{ .NoSuchField }}"})
	require.NoError(t, err)
	_, err = tmpl.User(Input{})
	require.ErrorContains(t, err, "render user")

	sys, err := tmpl.System(Input{})
	require.NoError(t, err)
	require.Equal(t, "s", sys)
}
