package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/planmark/review-backend/internal/review/domain"
)

// Memory is an in-memory Repository with the same contract as the Postgres
// implementation. It backs the engine and store tests and embedded hosts
// that do not need durable persistence.
type Memory struct {
	mu sync.Mutex

	documents map[string]*memDocument
	versions  map[string]*domain.Version
	// nextVersion survives version deletion so numbers are never reused.
	nextVersion map[string]int

	annotations map[string]*domain.Annotation
	drawings    map[string]*domain.Drawing
	// drawOrder preserves insertion order per (version, page); the eraser's
	// topmost-wins rule depends on it.
	drawOrder map[pageKey][]string
	annOrder  map[string][]string
}

type memDocument struct {
	doc       domain.Document
	deletedAt *time.Time
}

type pageKey struct {
	versionID string
	page      int
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		documents:   make(map[string]*memDocument),
		versions:    make(map[string]*domain.Version),
		nextVersion: make(map[string]int),
		annotations: make(map[string]*domain.Annotation),
		drawings:    make(map[string]*domain.Drawing),
		drawOrder:   make(map[pageKey][]string),
		annOrder:    make(map[string][]string),
	}
}

func (m *Memory) CreateDocument(ctx context.Context, name, externalCode, authorUID, authorName string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := NewTextID("doc")
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	d := domain.Document{
		PublicID:     id,
		Name:         name,
		ExternalCode: externalCode,
		AuthorUID:    authorUID,
		AuthorName:   authorName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.documents[id] = &memDocument{doc: d}
	out := d
	return &out, nil
}

func (m *Memory) GetDocument(ctx context.Context, publicID string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	md, ok := m.documents[publicID]
	if !ok || md.deletedAt != nil {
		return nil, domain.ErrNotFound
	}
	out := md.doc
	return &out, nil
}

func (m *Memory) ListDocuments(ctx context.Context, authorUID string) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Document, 0, len(m.documents))
	for _, md := range m.documents {
		if md.deletedAt != nil {
			continue
		}
		if authorUID != "" && md.doc.AuthorUID != authorUID {
			continue
		}
		out = append(out, md.doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) RenameDocument(ctx context.Context, publicID, name string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	md, ok := m.documents[publicID]
	if !ok || md.deletedAt != nil {
		return nil, domain.ErrNotFound
	}
	md.doc.Name = name
	md.doc.UpdatedAt = time.Now().UTC()
	out := md.doc
	return &out, nil
}

func (m *Memory) DeleteDocument(ctx context.Context, publicID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	md, ok := m.documents[publicID]
	if !ok || md.deletedAt != nil {
		return false, nil
	}
	now := time.Now().UTC()
	md.deletedAt = &now
	for id, v := range m.versions {
		if v.DocumentID == publicID {
			m.dropVersionLocked(id)
		}
	}
	return true, nil
}

func (m *Memory) PurgeDocuments(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, md := range m.documents {
		if md.deletedAt != nil && md.deletedAt.Before(cutoff) {
			delete(m.documents, id)
			delete(m.nextVersion, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) CreateVersion(ctx context.Context, documentID, pageResource string, pageCount int) (*domain.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	md, ok := m.documents[documentID]
	if !ok || md.deletedAt != nil {
		return nil, domain.ErrNotFound
	}
	id, err := NewID("ver")
	if err != nil {
		return nil, err
	}
	m.nextVersion[documentID]++
	v := domain.Version{
		ID:            id,
		DocumentID:    documentID,
		VersionNumber: m.nextVersion[documentID],
		PageResource:  pageResource,
		PageCount:     pageCount,
		CreatedAt:     time.Now().UTC(),
	}
	m.versions[id] = &v
	out := v
	return &out, nil
}

func (m *Memory) GetVersion(ctx context.Context, id string) (*domain.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.versions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *v
	return &out, nil
}

func (m *Memory) ListVersions(ctx context.Context, documentID string) ([]domain.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Version, 0, 4)
	for _, v := range m.versions {
		if v.DocumentID == documentID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

func (m *Memory) CountVersions(ctx context.Context, documentID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, v := range m.versions {
		if v.DocumentID == documentID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) DeleteVersion(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.versions[id]; !ok {
		return nil
	}
	m.dropVersionLocked(id)
	return nil
}

// dropVersionLocked removes a version and everything anchored to it.
func (m *Memory) dropVersionLocked(id string) {
	delete(m.versions, id)
	for _, aid := range m.annOrder[id] {
		delete(m.annotations, aid)
	}
	delete(m.annOrder, id)
	for key, ids := range m.drawOrder {
		if key.versionID != id {
			continue
		}
		for _, did := range ids {
			delete(m.drawings, did)
		}
		delete(m.drawOrder, key)
	}
}

func (m *Memory) CreateAnnotation(ctx context.Context, a *domain.Annotation) (*domain.Annotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.versions[a.VersionID]; !ok {
		return nil, domain.ErrNotFound
	}
	id, err := NewID("ann")
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	stored := *a
	stored.ID = id
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.annotations[id] = &stored
	m.annOrder[a.VersionID] = append(m.annOrder[a.VersionID], id)
	out := stored
	return &out, nil
}

func (m *Memory) GetAnnotation(ctx context.Context, id string) (*domain.Annotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.annotations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (m *Memory) ListAnnotations(ctx context.Context, versionID string) ([]domain.Annotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.annOrder[versionID]
	out := make([]domain.Annotation, 0, len(ids))
	for _, id := range ids {
		if a, ok := m.annotations[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *Memory) UpdateAnnotation(ctx context.Context, a *domain.Annotation) (*domain.Annotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.annotations[a.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	stored := *a
	stored.UpdatedAt = time.Now().UTC()
	m.annotations[a.ID] = &stored
	out := stored
	return &out, nil
}

func (m *Memory) DeleteAnnotation(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.annotations[id]
	if !ok {
		return nil
	}
	delete(m.annotations, id)
	m.annOrder[a.VersionID] = removeID(m.annOrder[a.VersionID], id)
	return nil
}

func (m *Memory) CreateDrawing(ctx context.Context, d *domain.Drawing) (*domain.Drawing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.versions[d.VersionID]; !ok {
		return nil, domain.ErrNotFound
	}
	id, err := NewID("drw")
	if err != nil {
		return nil, err
	}
	stored := *d
	stored.ID = id
	stored.CreatedAt = time.Now().UTC()
	m.drawings[id] = &stored
	key := pageKey{versionID: d.VersionID, page: d.Page}
	m.drawOrder[key] = append(m.drawOrder[key], id)
	out := stored
	return &out, nil
}

func (m *Memory) ListDrawings(ctx context.Context, versionID string, page int) ([]domain.Drawing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.drawOrder[pageKey{versionID: versionID, page: page}]
	out := make([]domain.Drawing, 0, len(ids))
	for _, id := range ids {
		if d, ok := m.drawings[id]; ok {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *Memory) DeleteDrawing(ctx context.Context, id string) (*domain.Drawing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drawings[id]
	if !ok {
		return nil, nil
	}
	delete(m.drawings, id)
	key := pageKey{versionID: d.VersionID, page: d.Page}
	m.drawOrder[key] = removeID(m.drawOrder[key], id)
	out := *d
	return &out, nil
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

var _ Repository = (*Memory)(nil)
