// Package models defines core data structures for documents, search and clustering.
package models

import "time"

// Document represents a stored document owned by a principal.
type Document struct {
	ID        string                 `json:"id" db:"id"`
	OwnerID   string                 `json:"owner_id" db:"owner_id"`
	Title     string                 `json:"title" db:"title"`
	Content   string                 `json:"content" db:"content"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
}

// TitleOrEmpty returns the title, or "" for a nil document.
func (d *Document) TitleOrEmpty() string {
	if d == nil {
		return ""
	}
	return d.Title
}

// ContentOrEmpty returns the content, or "" for a nil document.
func (d *Document) ContentOrEmpty() string {
	if d == nil {
		return ""
	}
	return d.Content
}

// DocumentInput is the input for creating or updating a document.
type DocumentInput struct {
	ID       string                 `json:"id,omitempty"`
	Title    string                 `json:"title,omitempty"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// CollaboratorInput grants a principal access to a document.
type CollaboratorInput struct {
	PrincipalID string `json:"principal_id"`
}
