package model

import (
	"time"
)

const (
	VisibilityPublic  = "Public"
	VisibilityPrivate = "Private"
	VisibilityByLink  = "By link"
)

type File struct {
	ID               string    `db:"id"`
	OriginalFileName string    `db:"original_file_name"` // sanitized display name
	UniqueFileName   string    `db:"unique_file_name"`   // storage key, unique on disk
	SizeInBytes      int64     `db:"size_in_bytes"`
	OwnerID          string    `db:"owner_id"`
	Privacy          string    `db:"privacy"`
	UploadDate       time.Time `db:"upload_date"`
	Expires          time.Time `db:"expires"`
	Description      string    `db:"description"`
}

func (f *File) IsExpired(now time.Time) bool {
	return !f.Expires.After(now)
}

// CanBeReadBy reports whether userID may download the file.
// An empty userID is an anonymous requester.
func (f *File) CanBeReadBy(userID string) bool {
	switch f.Privacy {
	case VisibilityPublic, VisibilityByLink:
		return true
	default:
		return userID != "" && userID == f.OwnerID
	}
}

// FileListing is a file row joined with its owner's username.
type FileListing struct {
	File
	OwnerUsername string `db:"owner_username"`
}
