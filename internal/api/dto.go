package api

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/vocab/internal/index"
	"github.com/starford/vocab/internal/models"
	"github.com/starford/vocab/internal/session"
	"github.com/starford/vocab/internal/vocab"
)

// Placement values for InsertTopicRequest.
const (
	PlaceBefore = "before"
	PlaceAfter  = "after"
)

// InsertTopicRequest is the request body for POST /topics.
type InsertTopicRequest struct {
	Position  int      `json:"position" example:"1"`
	Placement string   `json:"placement" example:"after"`
	Name      string   `json:"name" example:"Animals"`
	Words     []string `json:"words,omitempty" example:"Cat,Dog"`
}

// Validate implements validatable.
func (r *InsertTopicRequest) Validate() error {
	r.Placement = strings.ToLower(strings.TrimSpace(r.Placement))
	return validation.ValidateStruct(r,
		validation.Field(&r.Position, validation.Required, validation.Min(1)),
		validation.Field(&r.Placement, validation.Required, validation.In(PlaceBefore, PlaceAfter)),
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Words, validation.Each(validation.Required)),
	)
}

// WordRequest is the request body for adding or renaming a word.
type WordRequest struct {
	Word string `json:"word" example:"Horse"`
}

// Validate implements validatable.
func (r *WordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Word, validation.Required),
	)
}

// LoadRequest is the request body for POST /load.
type LoadRequest struct {
	Path string `json:"path" example:"animals.txt"`
}

// Validate implements validatable.
func (r *LoadRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path, validation.Required),
	)
}

// SaveRequest is the request body for POST /save. An empty path saves to the
// file the list was loaded from.
type SaveRequest struct {
	Path string `json:"path,omitempty" example:"animals.txt"`
}

// Validate implements validatable.
func (r *SaveRequest) Validate() error { return nil }

// MoveFileRequest is the request body for POST /files/move.
type MoveFileRequest struct {
	From string `json:"from" example:"old.txt"`
	To   string `json:"to" example:"archive/old.txt"`
}

// Validate implements validatable.
func (r *MoveFileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.From, validation.Required),
		validation.Field(&r.To, validation.Required),
	)
}

// TopicListResponse wraps the numbered topic listing.
type TopicListResponse struct {
	Topics []models.TopicSummary `json:"topics"`
	Total  int                   `json:"total" example:"2"`
}

// SearchResponse wraps per-topic word hits.
type SearchResponse struct {
	Word string      `json:"word" example:"cat"`
	Hits []vocab.Hit `json:"hits"`
}

// PrefixResponse wraps the sorted words that start with a letter.
type PrefixResponse struct {
	Letter string   `json:"letter" example:"c"`
	Words  []string `json:"words"`
}

// FileListResponse wraps the vault file listing.
type FileListResponse struct {
	Files []models.FileMetadata `json:"files"`
}

// VaultSearchResponse wraps full-text results across vault files.
type VaultSearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// FileResult reports a load or save.
type FileResult = session.FileResult

// Status describes the working list.
type Status = session.Status
