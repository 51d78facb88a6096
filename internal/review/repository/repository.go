// Package repository is the persistence collaborator for the review engine:
// abstract CRUD over the four record kinds (Document, Version, Annotation,
// Drawing), each create returning the full record with server-assigned id
// and timestamps, or failing entirely. Callers must not assume any
// transactional guarantee beyond that.
package repository

import (
	"context"
	"time"

	"github.com/planmark/review-backend/internal/review/domain"
)

// Repository is implemented by the Postgres store and by the in-memory
// store used in tests and embedded hosts.
type Repository interface {
	CreateDocument(ctx context.Context, name, externalCode, authorUID, authorName string) (*domain.Document, error)
	GetDocument(ctx context.Context, publicID string) (*domain.Document, error)
	ListDocuments(ctx context.Context, authorUID string) ([]domain.Document, error)
	RenameDocument(ctx context.Context, publicID, name string) (*domain.Document, error)
	// DeleteDocument soft-deletes the document and cascades to its
	// versions, annotations and drawings. Returns false when nothing
	// matched.
	DeleteDocument(ctx context.Context, publicID string) (bool, error)
	// PurgeDocuments hard-deletes documents soft-deleted before cutoff and
	// returns how many were removed.
	PurgeDocuments(ctx context.Context, cutoff time.Time) (int, error)

	// CreateVersion assigns the next version number for the document
	// (strictly increasing, never reused even after deleting the highest).
	CreateVersion(ctx context.Context, documentID, pageResource string, pageCount int) (*domain.Version, error)
	GetVersion(ctx context.Context, id string) (*domain.Version, error)
	// ListVersions returns the document's versions ordered by version
	// number descending; index 0 is the current version.
	ListVersions(ctx context.Context, documentID string) ([]domain.Version, error)
	CountVersions(ctx context.Context, documentID string) (int, error)
	// DeleteVersion cascades to the version's annotations and drawings.
	DeleteVersion(ctx context.Context, id string) error

	CreateAnnotation(ctx context.Context, a *domain.Annotation) (*domain.Annotation, error)
	GetAnnotation(ctx context.Context, id string) (*domain.Annotation, error)
	ListAnnotations(ctx context.Context, versionID string) ([]domain.Annotation, error)
	UpdateAnnotation(ctx context.Context, a *domain.Annotation) (*domain.Annotation, error)
	// DeleteAnnotation is idempotent: deleting a missing id is a no-op.
	DeleteAnnotation(ctx context.Context, id string) error

	CreateDrawing(ctx context.Context, d *domain.Drawing) (*domain.Drawing, error)
	// ListDrawings returns the page's drawings in insertion order (oldest
	// first); the eraser's topmost-wins rule depends on this order.
	ListDrawings(ctx context.Context, versionID string, page int) ([]domain.Drawing, error)
	// DeleteDrawing returns the deleted record so callers can offer undo,
	// or (nil, nil) when the id was already gone.
	DeleteDrawing(ctx context.Context, id string) (*domain.Drawing, error)
}
