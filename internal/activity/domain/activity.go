package domain

import "time"

// Kind discriminates the record union in the activity feed.
type Kind string

const (
	KindComment Kind = "comment"
	KindLike    Kind = "like"
	KindSave    Kind = "save"
)

// Record is one entry in a follower's activity feed. Content is set
// for comments only, PaperTitle for likes and saves when known.
type Record struct {
	ID         string
	Kind       Kind
	UserID     string
	Username   string
	PaperID    string
	PaperTitle string
	Content    string
	CreatedAt  time.Time
}

type Comment struct {
	ID        string
	PaperID   string
	Content   string
	UserID    string
	Username  string
	CreatedAt time.Time
}

// Engagement is a single like or save row. The two tables share a shape.
type Engagement struct {
	ID         string
	PaperID    string
	PaperTitle string
	UserID     string
	CreatedAt  time.Time
}

// PaperStatus summarizes the caller's relationship with one paper.
type PaperStatus struct {
	PaperID   string
	Liked     bool
	Saved     bool
	LikeCount int
}
