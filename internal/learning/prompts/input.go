package prompts

// Input is a superset of all fields any prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	// Free-text request the learner typed when asking for the course.
	UserRequest string
	// Full course outline, pretty-printed JSON.
	OutlineJSON string

	// Topic under enrichment
	TopicTitle       string
	TopicDescription string
	TopicQuery       string

	QuestionCount int
}
