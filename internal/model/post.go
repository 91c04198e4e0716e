package model

import "time"

type Post struct {
	ID        string    `db:"id"`
	AuthorID  string    `db:"author_id"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}

// PostView is a post as shown on the wall, from the point of view of one viewer.
type PostView struct {
	Post
	AuthorUsername string `db:"author_username"`
	Likes          int    `db:"likes"`
	LikedByViewer  bool   `db:"liked_by_viewer"`
}

type LikeState struct {
	PostID string
	Likes  int
	Liked  bool
}
