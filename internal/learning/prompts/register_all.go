package prompts

// QuestionsPerTopic is the exact number of self-check questions requested per topic.
const QuestionsPerTopic = 5

func RegisterAll() {
	RegisterSpec(Spec{
		Name:       PromptTopicQuestions,
		Version:    1,
		SchemaName: "topic_questions",
		Schema:     TopicQuestionsSchema(QuestionsPerTopic),
		System: `You write self-check questions for one topic of a personalized course.
Each question must be answerable from the topic alone, with a concise correct answer.
Each searchQuery is a short web/video search a learner could run to dig deeper into that question.`,
		User: `Learner request:
{{.UserRequest}}

Course outline:
{{.OutlineJSON}}

Topic: {{.TopicTitle}}
Description: {{.TopicDescription}}
Search query: {{.TopicQuery}}

Write exactly {{.QuestionCount}} questions for this topic.`,
		Validators: []Validator{
			RequireNonEmpty("TopicTitle", func(in Input) string { return in.TopicTitle }),
			RequirePositive("QuestionCount", func(in Input) int { return in.QuestionCount }),
		},
	})

	RegisterSpec(Spec{
		Name:    PromptCourseSummary,
		Version: 1,
		System: `You narrate course overviews. Write a warm, spoken-style summary of the course
in plain prose: no markdown, no lists, no headings. Three short paragraphs at most.
The text will be read aloud.`,
		User: `Learner request:
{{.UserRequest}}

Course outline:
{{.OutlineJSON}}`,
		Validators: []Validator{
			RequireNonEmpty("OutlineJSON", func(in Input) string { return in.OutlineJSON }),
		},
	})

	RegisterSpec(Spec{
		Name:       PromptCapstoneProject,
		Version:    1,
		SchemaName: "capstone_project",
		Schema:     CapstoneSchema,
		System: `You design a capstone project that ties together every section of a course.
The project must be achievable by the learner described in the request, exercise the
course's main skills, and have concrete milestones and evaluation criteria.`,
		User: `Learner request:
{{.UserRequest}}

Course outline:
{{.OutlineJSON}}`,
		Validators: []Validator{
			RequireNonEmpty("OutlineJSON", func(in Input) string { return in.OutlineJSON }),
			RequireNonEmpty("UserRequest", func(in Input) string { return in.UserRequest }),
		},
	})
}
