// Package store is the annotation & version store: all reads and writes of
// documents, versions, annotations and drawings flow through it. It owns the
// in-memory caches for the open version's annotations and per-page drawings;
// the drawing engine and the HTTP layer never mutate those directly.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/planmark/review-backend/internal/review/domain"
	"github.com/planmark/review-backend/internal/review/repository"
)

// Author identifies the reviewer performing an operation. Names are
// denormalized onto records for display.
type Author struct {
	UID  string
	Name string
}

// Store wraps the persistence collaborator with validation, the status
// state machine and the version-carryover algorithm.
type Store struct {
	repo  repository.Repository
	cache *cache
}

// New creates a Store over the given repository.
func New(repo repository.Repository) *Store {
	return &Store{repo: repo, cache: newCache()}
}

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || domain.IsValidation(err) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

// --- documents ---

func (s *Store) CreateDocument(ctx context.Context, name, externalCode string, author Author) (*domain.Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "required"}
	}
	doc, err := s.repo.CreateDocument(ctx, name, externalCode, author.UID, author.Name)
	return doc, persistErr("create document", err)
}

func (s *Store) GetDocument(ctx context.Context, publicID string) (*domain.Document, error) {
	doc, err := s.repo.GetDocument(ctx, publicID)
	return doc, persistErr("get document", err)
}

func (s *Store) ListDocuments(ctx context.Context, authorUID string) ([]domain.Document, error) {
	docs, err := s.repo.ListDocuments(ctx, authorUID)
	return docs, persistErr("list documents", err)
}

func (s *Store) RenameDocument(ctx context.Context, publicID, name string) (*domain.Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "required"}
	}
	doc, err := s.repo.RenameDocument(ctx, publicID, name)
	return doc, persistErr("rename document", err)
}

// DeleteDocument soft-deletes a document with everything under it.
func (s *Store) DeleteDocument(ctx context.Context, publicID string) (bool, error) {
	versions, err := s.repo.ListVersions(ctx, publicID)
	if err != nil {
		return false, persistErr("list versions", err)
	}
	ok, err := s.repo.DeleteDocument(ctx, publicID)
	if err != nil {
		return false, persistErr("delete document", err)
	}
	if ok {
		for _, v := range versions {
			s.cache.dropVersion(v.ID)
		}
	}
	return ok, nil
}

// --- versions ---

// CarryoverItem reports the outcome of copying one open annotation onto a
// newly created version.
type CarryoverItem struct {
	SourceID string `json:"source_id"`
	CopyID   string `json:"copy_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// CreateVersionResult is the aggregate outcome of CreateVersion: the new
// version plus the per-annotation carryover report.
type CreateVersionResult struct {
	Version   *domain.Version `json:"version"`
	Carryover []CarryoverItem `json:"carryover,omitempty"`
}

// CreateVersion creates the next version of a document and carries every
// open annotation of the prior current version forward onto it. The copy
// keeps page, position, category and author; its inherited_from always
// points at the thread root, not the immediately preceding copy. The copy
// pass is best-effort per item: failures are reported, already-copied
// annotations stay, and the version itself is never rolled back.
func (s *Store) CreateVersion(ctx context.Context, documentID, pageResource string, pageCount int) (*CreateVersionResult, error) {
	if pageCount < 1 {
		return nil, &domain.ValidationError{Field: "page_count", Reason: "must be at least 1"}
	}
	if pageResource == "" {
		return nil, &domain.ValidationError{Field: "page_resource", Reason: "required"}
	}

	prior, err := s.repo.ListVersions(ctx, documentID)
	if err != nil {
		return nil, persistErr("list versions", err)
	}

	version, err := s.repo.CreateVersion(ctx, documentID, pageResource, pageCount)
	if err != nil {
		return nil, persistErr("create version", err)
	}

	result := &CreateVersionResult{Version: version}
	if len(prior) == 0 {
		return result, nil
	}

	source, err := s.repo.ListAnnotations(ctx, prior[0].ID)
	if err != nil {
		// The version already exists and holds the new page content; a
		// failed carryover read is reported, not fatal.
		log.Printf("[store] carryover read failed for version %s: %v", prior[0].ID, err)
		result.Carryover = []CarryoverItem{{SourceID: prior[0].ID, Error: err.Error()}}
		return result, nil
	}

	for _, src := range source {
		if !src.Open() {
			continue
		}
		copyPage := src.Page
		if copyPage > pageCount {
			// The new upload has fewer pages; anchor the copy to the last
			// one rather than dropping the open issue.
			copyPage = pageCount
		}
		copy := &domain.Annotation{
			VersionID:     version.ID,
			Page:          copyPage,
			X:             src.X,
			Y:             src.Y,
			Body:          src.Body,
			Category:      src.Category,
			Status:        domain.StatusOpen,
			AuthorUID:     src.AuthorUID,
			AuthorName:    src.AuthorName,
			InheritedFrom: src.Root(),
		}
		created, err := s.repo.CreateAnnotation(ctx, copy)
		item := CarryoverItem{SourceID: src.ID}
		if err != nil {
			item.Error = err.Error()
			log.Printf("[store] carryover of %s failed: %v", src.ID, err)
		} else {
			item.CopyID = created.ID
			s.cache.appendAnnotation(*created)
		}
		result.Carryover = append(result.Carryover, item)
	}
	return result, nil
}

func (s *Store) GetVersion(ctx context.Context, id string) (*domain.Version, error) {
	v, err := s.repo.GetVersion(ctx, id)
	return v, persistErr("get version", err)
}

// ListVersions returns a document's versions newest first.
func (s *Store) ListVersions(ctx context.Context, documentID string) ([]domain.Version, error) {
	out, err := s.repo.ListVersions(ctx, documentID)
	return out, persistErr("list versions", err)
}

// CurrentVersion derives the current version as the one with the highest
// version number. Returns ErrNotFound for a document with no versions.
func (s *Store) CurrentVersion(ctx context.Context, documentID string) (*domain.Version, error) {
	versions, err := s.repo.ListVersions(ctx, documentID)
	if err != nil {
		return nil, persistErr("list versions", err)
	}
	if len(versions) == 0 {
		return nil, domain.ErrNotFound
	}
	v := versions[0]
	return &v, nil
}

// DeleteVersion removes a version and everything anchored to it. It refuses
// to delete a document's only version; whether the document itself should
// go is the host's decision, not the store's.
func (s *Store) DeleteVersion(ctx context.Context, id string) error {
	v, err := s.repo.GetVersion(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return persistErr("get version", err)
	}
	n, err := s.repo.CountVersions(ctx, v.DocumentID)
	if err != nil {
		return persistErr("count versions", err)
	}
	if n <= 1 {
		return domain.ErrLastVersion
	}
	if err := s.repo.DeleteVersion(ctx, id); err != nil {
		return persistErr("delete version", err)
	}
	s.cache.dropVersion(id)
	return nil
}

// --- annotations ---

// CreateAnnotation places a new open annotation on a version page.
// Position is in page percentages and immutable afterwards.
func (s *Store) CreateAnnotation(ctx context.Context, versionID string, page int, x, y float64, body, category string, author Author) (*domain.Annotation, error) {
	if strings.TrimSpace(body) == "" {
		return nil, &domain.ValidationError{Field: "body", Reason: "required"}
	}
	if x < 0 || x > 100 || y < 0 || y > 100 {
		return nil, &domain.ValidationError{Field: "position", Reason: fmt.Sprintf("(%.2f, %.2f) outside [0,100]", x, y)}
	}
	if category == "" {
		category = domain.CategoryGeneral
	}
	if !domain.ValidCategory(category) {
		return nil, &domain.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", category)}
	}
	version, err := s.repo.GetVersion(ctx, versionID)
	if err != nil {
		return nil, persistErr("get version", err)
	}
	if page < 1 || page > version.PageCount {
		return nil, &domain.ValidationError{Field: "page", Reason: fmt.Sprintf("page %d outside 1..%d", page, version.PageCount)}
	}

	a := &domain.Annotation{
		VersionID:  versionID,
		Page:       page,
		X:          x,
		Y:          y,
		Body:       strings.TrimSpace(body),
		Category:   category,
		Status:     domain.StatusOpen,
		AuthorUID:  author.UID,
		AuthorName: author.Name,
	}
	created, err := s.repo.CreateAnnotation(ctx, a)
	if err != nil {
		return nil, persistErr("create annotation", err)
	}
	s.cache.appendAnnotation(*created)
	return created, nil
}

// ListAnnotations returns a version's annotations, serving from the cache
// once loaded.
func (s *Store) ListAnnotations(ctx context.Context, versionID string) ([]domain.Annotation, error) {
	if cached, ok := s.cache.annotationsFor(versionID); ok {
		return cached, nil
	}
	out, err := s.repo.ListAnnotations(ctx, versionID)
	if err != nil {
		return nil, persistErr("list annotations", err)
	}
	s.cache.setAnnotations(versionID, out)
	return out, nil
}

// ResolveAnnotation transitions an open annotation to resolved, recording
// the resolver. Resolving an already-resolved annotation is a no-op.
func (s *Store) ResolveAnnotation(ctx context.Context, id string, resolver Author) (*domain.Annotation, error) {
	a, err := s.repo.GetAnnotation(ctx, id)
	if err != nil {
		return nil, persistErr("get annotation", err)
	}
	if a.Status == domain.StatusResolved {
		return a, nil
	}
	now := time.Now().UTC()
	a.Status = domain.StatusResolved
	a.ResolvedBy = resolver.UID
	a.ResolvedName = resolver.Name
	a.ResolvedAt = &now

	updated, err := s.repo.UpdateAnnotation(ctx, a)
	if err != nil {
		return nil, persistErr("resolve annotation", err)
	}
	s.cache.replaceAnnotation(*updated)
	return updated, nil
}

// ReopenAnnotation transitions a resolved annotation back to open and
// clears the resolution metadata. Reopening an open annotation is a no-op.
// Reopening never re-runs carryover: copies happen only at version
// creation.
func (s *Store) ReopenAnnotation(ctx context.Context, id string) (*domain.Annotation, error) {
	a, err := s.repo.GetAnnotation(ctx, id)
	if err != nil {
		return nil, persistErr("get annotation", err)
	}
	if a.Status == domain.StatusOpen {
		return a, nil
	}
	a.Status = domain.StatusOpen
	a.ResolvedBy = ""
	a.ResolvedName = ""
	a.ResolvedAt = nil

	updated, err := s.repo.UpdateAnnotation(ctx, a)
	if err != nil {
		return nil, persistErr("reopen annotation", err)
	}
	s.cache.replaceAnnotation(*updated)
	return updated, nil
}

// EditAnnotation updates body and category. Position, page and author are
// immutable after creation.
func (s *Store) EditAnnotation(ctx context.Context, id, body, category string) (*domain.Annotation, error) {
	if strings.TrimSpace(body) == "" {
		return nil, &domain.ValidationError{Field: "body", Reason: "required"}
	}
	if !domain.ValidCategory(category) {
		return nil, &domain.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", category)}
	}
	a, err := s.repo.GetAnnotation(ctx, id)
	if err != nil {
		return nil, persistErr("get annotation", err)
	}
	a.Body = strings.TrimSpace(body)
	a.Category = category

	updated, err := s.repo.UpdateAnnotation(ctx, a)
	if err != nil {
		return nil, persistErr("edit annotation", err)
	}
	s.cache.replaceAnnotation(*updated)
	return updated, nil
}

// DeleteAnnotation removes an annotation. Deleting a missing id is a no-op.
func (s *Store) DeleteAnnotation(ctx context.Context, id string) error {
	if err := s.repo.DeleteAnnotation(ctx, id); err != nil {
		return persistErr("delete annotation", err)
	}
	s.cache.removeAnnotation(id)
	return nil
}

// --- drawings ---

// CreateDrawing commits a finished shape onto a version page.
func (s *Store) CreateDrawing(ctx context.Context, versionID string, page int, shapeType string, shape domain.ShapeData, color string, strokeWidth float64, author Author) (*domain.Drawing, error) {
	if err := domain.ValidateShape(shapeType, shape); err != nil {
		return nil, err
	}
	if strokeWidth <= 0 {
		strokeWidth = 2
	}
	version, err := s.repo.GetVersion(ctx, versionID)
	if err != nil {
		return nil, persistErr("get version", err)
	}
	if page < 1 || page > version.PageCount {
		return nil, &domain.ValidationError{Field: "page", Reason: fmt.Sprintf("page %d outside 1..%d", page, version.PageCount)}
	}

	d := &domain.Drawing{
		VersionID:   versionID,
		Page:        page,
		ShapeType:   shapeType,
		Shape:       shape,
		Color:       color,
		StrokeWidth: strokeWidth,
		AuthorUID:   author.UID,
		AuthorName:  author.Name,
	}
	created, err := s.repo.CreateDrawing(ctx, d)
	if err != nil {
		return nil, persistErr("create drawing", err)
	}
	s.cache.appendDrawing(*created)
	return created, nil
}

// ListDrawings returns a page's drawings in insertion order, oldest first,
// serving from the cache once loaded.
func (s *Store) ListDrawings(ctx context.Context, versionID string, page int) ([]domain.Drawing, error) {
	if cached, ok := s.cache.drawingsFor(versionID, page); ok {
		return cached, nil
	}
	out, err := s.repo.ListDrawings(ctx, versionID, page)
	if err != nil {
		return nil, persistErr("list drawings", err)
	}
	s.cache.setDrawings(versionID, page, out)
	return out, nil
}

// DeleteDrawing removes a drawing and returns the deleted record so the
// caller can offer undo. A missing id returns (nil, nil).
func (s *Store) DeleteDrawing(ctx context.Context, id string) (*domain.Drawing, error) {
	deleted, err := s.repo.DeleteDrawing(ctx, id)
	if err != nil {
		return nil, persistErr("delete drawing", err)
	}
	if deleted == nil {
		s.cache.removeDrawing(id)
		return nil, nil
	}
	s.cache.removeDrawing(id)
	return deleted, nil
}

// RestoreDrawing re-creates a previously deleted drawing with a new
// identity, preserving every other field. The restored record is appended
// at the end of the page order as the newest item, which keeps the eraser's
// topmost-wins scan correct. The payload gets the same validation as a
// fresh create; restore is also reachable straight from the HTTP surface.
func (s *Store) RestoreDrawing(ctx context.Context, d *domain.Drawing) (*domain.Drawing, error) {
	if err := domain.ValidateShape(d.ShapeType, d.Shape); err != nil {
		return nil, err
	}
	version, err := s.repo.GetVersion(ctx, d.VersionID)
	if err != nil {
		return nil, persistErr("get version", err)
	}
	if d.Page < 1 || d.Page > version.PageCount {
		return nil, &domain.ValidationError{Field: "page", Reason: fmt.Sprintf("page %d outside 1..%d", d.Page, version.PageCount)}
	}

	fresh := *d
	fresh.ID = ""
	restored, err := s.repo.CreateDrawing(ctx, &fresh)
	if err != nil {
		return nil, persistErr("restore drawing", err)
	}
	s.cache.appendDrawing(*restored)
	return restored, nil
}

// Refresh drops the cached annotations and drawings for a version so the
// next read reloads from persistence. Triggered by explicit host actions
// (open a version, switch page, refresh).
func (s *Store) Refresh(versionID string) {
	s.cache.dropVersion(versionID)
}
