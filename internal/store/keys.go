package store

// Key builders for the Q&A namespaces. Keyed by entity display name for
// compatibility with the legacy layout; the feed layer rejects duplicate
// visible names so keys cannot collide.

func QuestionsKey(entity string) string {
	return "questions:" + entity
}

func DraftKey(entity string) string {
	return "draft:" + entity
}

func SubmitCountKey(entity, submitter string) string {
	return "submitCount:" + entity + ":" + submitter
}

func DeviceCountKey(entity string) string {
	return "deviceCount:" + entity
}

// QAPrefixes lists every namespace holding per-entity Q&A state, in the order
// the reset command clears them.
func QAPrefixes() []string {
	return []string{"questions:", "draft:", "submitCount:", "deviceCount:"}
}
