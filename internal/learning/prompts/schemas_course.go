package prompts

func TopicQuestionsSchema(n int) func() map[string]any {
	return func() map[string]any {
		question := ObjectSchema(map[string]any{
			"question":    StringSchema(),
			"answer":      StringSchema(),
			"searchQuery": StringSchema(),
		}, []string{"question", "answer", "searchQuery"})
		return ObjectSchema(map[string]any{
			"questions": FixedArraySchema(question, n),
		}, []string{"questions"})
	}
}

func CapstoneSchema() map[string]any {
	milestone := ObjectSchema(map[string]any{
		"title":       StringSchema(),
		"description": StringSchema(),
	}, []string{"title", "description"})
	return ObjectSchema(map[string]any{
		"title":              StringSchema(),
		"description":        StringSchema(),
		"objectives":         StringArraySchema(),
		"requirements":       StringArraySchema(),
		"milestones":         map[string]any{"type": "array", "items": milestone},
		"deliverables":       StringArraySchema(),
		"evaluationCriteria": StringArraySchema(),
		"estimatedDuration":  StringSchema(),
	}, []string{
		"title", "description", "objectives", "requirements",
		"milestones", "deliverables", "evaluationCriteria", "estimatedDuration",
	})
}
