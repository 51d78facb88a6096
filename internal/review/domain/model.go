package domain

import "time"

// Document represents a reviewable package of drawing content.
// It is intentionally storage-agnostic and used across repository and HTTP layers.
type Document struct {
	PublicID     string    `json:"public_id"`
	Name         string    `json:"name"`
	ExternalCode string    `json:"external_code,omitempty"`
	AuthorUID    string    `json:"author_uid"`
	AuthorName   string    `json:"author_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Version is one immutable numbered snapshot of a Document's page content.
// The current version of a document is the one with the highest
// VersionNumber; there is no separate "is current" flag.
type Version struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	VersionNumber int       `json:"version_number"`
	PageResource  string    `json:"page_resource"`
	PageCount     int       `json:"page_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// AnnotationStatus constants
const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
)

// Annotation categories
const (
	CategoryGeneral          = "general"
	CategoryError            = "error"
	CategoryQuestion         = "question"
	CategorySuggestion       = "suggestion"
	CategoryMissingDimension = "missing_dimension"
	CategoryMaterial         = "material"
	CategoryDimension        = "dimension"
	CategoryAlignment        = "alignment"
	CategorySpecialties      = "specialties"
)

// ValidCategory reports whether category is one of the known annotation categories.
func ValidCategory(category string) bool {
	switch category {
	case CategoryGeneral, CategoryError, CategoryQuestion, CategorySuggestion,
		CategoryMissingDimension, CategoryMaterial, CategoryDimension,
		CategoryAlignment, CategorySpecialties:
		return true
	}
	return false
}

// Annotation is a positioned, resolvable comment anchored to a page of a
// Version. X and Y are percentages of page width/height in [0,100]; pixel
// coordinates are never stored. Position and author are immutable after
// creation.
type Annotation struct {
	ID            string     `json:"id"`
	VersionID     string     `json:"version_id"`
	Page          int        `json:"page"`
	X             float64    `json:"x"`
	Y             float64    `json:"y"`
	Body          string     `json:"body"`
	Category      string     `json:"category"`
	Status        string     `json:"status"`
	AuthorUID     string     `json:"author_uid"`
	AuthorName    string     `json:"author_name"`
	ResolvedBy    string     `json:"resolved_by,omitempty"`
	ResolvedName  string     `json:"resolved_name,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	InheritedFrom string     `json:"inherited_from,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Open reports whether the annotation is still open.
func (a *Annotation) Open() bool { return a.Status == StatusOpen }

// Root returns the id of the thread root this annotation belongs to: its
// InheritedFrom when it was carried over, otherwise the annotation itself.
func (a *Annotation) Root() string {
	if a.InheritedFrom != "" {
		return a.InheritedFrom
	}
	return a.ID
}

// Drawing is an immutable vector markup primitive anchored to one page of a
// Version. Shape coordinates live in the same percentage space as
// annotations; StrokeWidth is in logical units, pre-zoom. Drawings are never
// edited in place — only deleted, and restored as a new record.
type Drawing struct {
	ID          string    `json:"id"`
	VersionID   string    `json:"version_id"`
	Page        int       `json:"page"`
	ShapeType   string    `json:"shape_type"`
	Shape       ShapeData `json:"shape_data"`
	Color       string    `json:"color"`
	StrokeWidth float64   `json:"stroke_width"`
	AuthorUID   string    `json:"author_uid"`
	AuthorName  string    `json:"author_name"`
	CreatedAt   time.Time `json:"created_at"`
}
