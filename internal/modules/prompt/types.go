package prompt

import "time"

// Prompt is one reusable text artifact. List order is the display order; the
// newest prompt sits at the head until the user reorders.
type Prompt struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CategoryID string    `json:"category_id,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Favorite   bool      `json:"favorite"`
	Versions   []Version `json:"versions,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Version is a superseded content snapshot, oldest first.
type Version struct {
	Content string    `json:"content"`
	SavedAt time.Time `json:"saved_at"`
}

type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// Word is a reusable snippet from the word library.
type Word struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Group string `json:"group,omitempty"`
}

// Template is a prompt skeleton with {{placeholder}} markers.
type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Library is the whole-library import/export payload.
type Library struct {
	FormatVersion int         `json:"format_version"`
	Prompts       []*Prompt   `json:"prompts"`
	Categories    []*Category `json:"categories"`
	Words         []*Word     `json:"words"`
	Templates     []*Template `json:"templates"`
}

// Query filters a prompt search. An empty keyword matches everything.
type Query struct {
	Keyword      string `json:"keyword" form:"keyword"`
	CategoryID   string `json:"category_id" form:"category_id"`
	FavoriteOnly bool   `json:"favorite_only" form:"favorite_only"`
}

const (
	// FormatVersion guards library imports from future payloads.
	FormatVersion = 1

	// Older content snapshots beyond this are dropped.
	maxVersions = 20
)
