package models

import "time"

// Content limits, matching the public posting rules.
const (
	PostTitleMinLen   = 4
	PostTitleMaxLen   = 300
	PostTextMaxLen    = 20_000
	CommentTextMaxLen = 3_000
	AuthorMinLen      = 3
)

// Post is an authored entry. Text holds sanitized rendered HTML, not the
// Markdown the author submitted; nil Text is a title-only post.
type Post struct {
	ID        int64
	Title     string
	Text      *string
	Author    string // username at creation time, not a foreign key
	CreatedAt time.Time
}

// Comment belongs to a post. Text is plain, trimmed to CommentTextMaxLen.
type Comment struct {
	ID        string
	PostID    int64
	Text      string
	Author    string
	CreatedAt time.Time
}
