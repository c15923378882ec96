// Package models contains the data types shared by the browser and the watcher.
package models

import "time"

// Mime types with special meaning for navigation. Everything else is
// an opaque document type.
const (
	MimeFolder   = "application/vnd.google-apps.folder"
	MimeShortcut = "application/vnd.google-apps.shortcut"
)

// Kind classifies an entry for navigation purposes.
type Kind int

const (
	KindFile Kind = iota
	KindFolder
	KindFileAlias
	KindFolderAlias
)

// String returns the kind name for logs.
func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindFileAlias:
		return "file-alias"
	case KindFolderAlias:
		return "folder-alias"
	default:
		return "file"
	}
}

// IsFolder reports whether the entry can be opened as a folder.
func (k Kind) IsFolder() bool {
	return k == KindFolder || k == KindFolderAlias
}

// AliasTarget describes where a shortcut entry points.
type AliasTarget struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
}

// Entry is one child of a remote folder listing.
type Entry struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	MimeType     string       `json:"mime_type"`
	ModifiedTime time.Time    `json:"modified_time"` // zero when the backend omits it
	WebViewLink  string       `json:"web_view_link,omitempty"`
	Alias        *AliasTarget `json:"alias,omitempty"`
}
