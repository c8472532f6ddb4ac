package model

import "time"

// ActivityType classifies an activity entry.
type ActivityType string

const (
	ActivityCreated  ActivityType = "created"
	ActivityNote     ActivityType = "note"
	ActivityStatus   ActivityType = "status"
	ActivityMove     ActivityType = "move"
	ActivityRelation ActivityType = "relation"
	ActivityGroup    ActivityType = "group"
)

// Activity is an append-only log entry on a ticket.
type Activity struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	Author    string       `json:"author"`
	Timestamp time.Time    `json:"timestamp"`
	Text      string       `json:"text"`
}

// AuthorOrAnonymous returns the author name, falling back to "anonymous"
// when the field is empty.
func (a Activity) AuthorOrAnonymous() string {
	if a.Author == "" {
		return "anonymous"
	}
	return a.Author
}
