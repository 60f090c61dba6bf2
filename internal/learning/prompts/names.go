package prompts

type PromptName string

const (
	// Enrichment
	PromptTopicQuestions  PromptName = "topic_questions"
	PromptCourseSummary   PromptName = "course_summary"
	PromptCapstoneProject PromptName = "capstone_project"
)
