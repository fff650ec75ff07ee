// Package storage defines the persistence interface for documents and their collaborators.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/bunseki/internal/models"
)

var (
	// ErrNotFound is returned when a document does not exist or the principal cannot see it.
	ErrNotFound = errors.New("document not found")
	// ErrForbidden is returned when a principal can see a document but may not change it.
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyExists is returned when creating a document whose ID is taken.
	ErrAlreadyExists = errors.New("document already exists")
)

// Storage defines document persistence and access control operations.
// A principal can access a document it owns or was added to as a collaborator.
// Only the owner may change, share or delete a document.
type Storage interface {
	// Document operations
	CreateDocument(ctx context.Context, doc *models.Document) error
	UpsertDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	GetAccessibleDocument(ctx context.Context, principal, id string) (*models.Document, error)
	UpdateDocument(ctx context.Context, principal string, doc *models.Document) error
	DeleteDocument(ctx context.Context, principal, id string) error

	// ListAccessibleDocuments returns every document principal can access, oldest first
	// with ties broken by id, so repeated calls see the same corpus order.
	ListAccessibleDocuments(ctx context.Context, principal string) ([]*models.Document, error)

	// Collaborator operations
	AddCollaborator(ctx context.Context, owner, docID, principal string) error
	RemoveCollaborator(ctx context.Context, owner, docID, principal string) error
	ListCollaborators(ctx context.Context, docID string) ([]string, error)

	// Stats
	CountDocuments(ctx context.Context) (int64, error)

	Close() error
}
