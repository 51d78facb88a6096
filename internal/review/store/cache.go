package store

import (
	"sync"

	"github.com/planmark/review-backend/internal/review/domain"
)

type pageKey struct {
	versionID string
	page      int
}

// cache holds the loaded annotation list per version and drawing list per
// (version, page). Slices keep insertion order; only the store mutates
// them, under the mutex.
type cache struct {
	mu          sync.Mutex
	annotations map[string][]domain.Annotation
	drawings    map[pageKey][]domain.Drawing
}

func newCache() *cache {
	return &cache{
		annotations: make(map[string][]domain.Annotation),
		drawings:    make(map[pageKey][]domain.Drawing),
	}
}

func (c *cache) annotationsFor(versionID string) ([]domain.Annotation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, ok := c.annotations[versionID]
	if !ok {
		return nil, false
	}
	out := make([]domain.Annotation, len(list))
	copy(out, list)
	return out, true
}

func (c *cache) setAnnotations(versionID string, list []domain.Annotation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := make([]domain.Annotation, len(list))
	copy(stored, list)
	c.annotations[versionID] = stored
}

func (c *cache) appendAnnotation(a domain.Annotation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if list, ok := c.annotations[a.VersionID]; ok {
		c.annotations[a.VersionID] = append(list, a)
	}
}

func (c *cache) replaceAnnotation(a domain.Annotation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, ok := c.annotations[a.VersionID]
	if !ok {
		return
	}
	for i := range list {
		if list[i].ID == a.ID {
			list[i] = a
			return
		}
	}
}

func (c *cache) removeAnnotation(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for versionID, list := range c.annotations {
		for i := range list {
			if list[i].ID == id {
				c.annotations[versionID] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

func (c *cache) drawingsFor(versionID string, page int) ([]domain.Drawing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, ok := c.drawings[pageKey{versionID, page}]
	if !ok {
		return nil, false
	}
	out := make([]domain.Drawing, len(list))
	copy(out, list)
	return out, true
}

func (c *cache) setDrawings(versionID string, page int, list []domain.Drawing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := make([]domain.Drawing, len(list))
	copy(stored, list)
	c.drawings[pageKey{versionID, page}] = stored
}

func (c *cache) appendDrawing(d domain.Drawing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := pageKey{d.VersionID, d.Page}
	if list, ok := c.drawings[key]; ok {
		c.drawings[key] = append(list, d)
	}
}

func (c *cache) removeDrawing(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, list := range c.drawings {
		for i := range list {
			if list[i].ID == id {
				c.drawings[key] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

func (c *cache) dropVersion(versionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.annotations, versionID)
	for key := range c.drawings {
		if key.versionID == versionID {
			delete(c.drawings, key)
		}
	}
}
