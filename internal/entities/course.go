package entities

import "strings"

// ActivityType is one of the fixed set of course activity kinds the
// generator knows how to emit.
type ActivityType string

const (
	ActivityLabel    ActivityType = "label"
	ActivityURL      ActivityType = "url"
	ActivityResource ActivityType = "resource"
	ActivityPage     ActivityType = "page"
	ActivityForum    ActivityType = "forum"
	ActivityAssign   ActivityType = "assign"
	ActivityQuiz     ActivityType = "quiz"
	ActivityFeedback ActivityType = "feedback"
)

// AllActivityTypes lists every recognized activity type in output spelling.
var AllActivityTypes = []ActivityType{
	ActivityLabel,
	ActivityURL,
	ActivityResource,
	ActivityPage,
	ActivityForum,
	ActivityAssign,
	ActivityQuiz,
	ActivityFeedback,
}

// ParseActivityType maps a raw CSV value to a recognized activity type.
// Matching is case-insensitive; the canonical lower-case spelling is what
// ends up in the generated documents and directory names.
func ParseActivityType(raw string) (ActivityType, bool) {
	normalized := ActivityType(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range AllActivityTypes {
		if normalized == t {
			return t, true
		}
	}
	return "", false
}

// Gradable reports whether activities of this type carry a grade item.
func (t ActivityType) Gradable() bool {
	return t == ActivityAssign || t == ActivityQuiz
}

// ShowsDescription reports whether the course page renders the activity's
// descriptive text inline. Only labels do; every other type shows a link.
func (t ActivityType) ShowsDescription() bool {
	return t == ActivityLabel
}
