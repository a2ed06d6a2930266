// Package models defines the vault-level types shared by storage, index and
// the session service.
package models

import "time"

// FileMetadata describes one vocabulary file in the vault.
type FileMetadata struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TopicSummary is one numbered line of a topic listing.
type TopicSummary struct {
	Position  int    `json:"position"`
	Name      string `json:"name"`
	WordCount int    `json:"word_count"`
}

// TopicDetail is a topic with its words, for browsing.
type TopicDetail struct {
	Position int      `json:"position"`
	Name     string   `json:"name"`
	Words    []string `json:"words"`
}
