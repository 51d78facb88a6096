package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planmark/review-backend/internal/review/domain"
)

// Postgres implements Repository on a pgx connection pool. Schema lives in
// schema.sql at the repo root.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed repository.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

const uniqueViolation = "23505"

func (r *Postgres) CreateDocument(ctx context.Context, name, externalCode, authorUID, authorName string) (*domain.Document, error) {
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "required"}
	}

	for i := 0; i < 5; i++ {
		publicID, err := NewTextID("rvw")
		if err != nil {
			return nil, err
		}

		const q = `
INSERT INTO review_documents (public_id, name, external_code, author_uid, author_name)
VALUES ($1, $2, nullif($3,''), $4, $5)
RETURNING public_id, name, coalesce(external_code,''), author_uid, author_name, created_at, updated_at;
`
		var d domain.Document
		err = r.db.QueryRow(ctx, q, publicID, name, externalCode, authorUID, authorName).
			Scan(&d.PublicID, &d.Name, &d.ExternalCode, &d.AuthorUID, &d.AuthorName, &d.CreatedAt, &d.UpdatedAt)
		if err == nil {
			return &d, nil
		}

		// unique violation on public_id → retry
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to generate unique document id")
}

func (r *Postgres) GetDocument(ctx context.Context, publicID string) (*domain.Document, error) {
	const q = `
SELECT public_id, name, coalesce(external_code,''), author_uid, author_name, created_at, updated_at
FROM review_documents
WHERE public_id = $1 AND deleted_at IS NULL;
`
	var d domain.Document
	err := r.db.QueryRow(ctx, q, publicID).
		Scan(&d.PublicID, &d.Name, &d.ExternalCode, &d.AuthorUID, &d.AuthorName, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *Postgres) ListDocuments(ctx context.Context, authorUID string) ([]domain.Document, error) {
	const q = `
SELECT public_id, name, coalesce(external_code,''), author_uid, author_name, created_at, updated_at
FROM review_documents
WHERE ($1 = '' OR author_uid = $1) AND deleted_at IS NULL
ORDER BY created_at DESC;
`
	rows, err := r.db.Query(ctx, q, authorUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Document, 0, 16)
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.PublicID, &d.Name, &d.ExternalCode, &d.AuthorUID, &d.AuthorName, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Postgres) RenameDocument(ctx context.Context, publicID, name string) (*domain.Document, error) {
	const q = `
UPDATE review_documents
SET name = $2, updated_at = now()
WHERE public_id = $1 AND deleted_at IS NULL
RETURNING public_id, name, coalesce(external_code,''), author_uid, author_name, created_at, updated_at;
`
	var d domain.Document
	err := r.db.QueryRow(ctx, q, publicID, name).
		Scan(&d.PublicID, &d.Name, &d.ExternalCode, &d.AuthorUID, &d.AuthorName, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *Postgres) DeleteDocument(ctx context.Context, publicID string) (bool, error) {
	// Soft delete; versions/annotations/drawings go with the document when
	// the sweeper purges it (ON DELETE CASCADE).
	const q = `
UPDATE review_documents
SET deleted_at = now(), updated_at = now()
WHERE public_id = $1 AND deleted_at IS NULL;
`
	tag, err := r.db.Exec(ctx, q, publicID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Postgres) PurgeDocuments(ctx context.Context, cutoff time.Time) (int, error) {
	const q = `
DELETE FROM review_documents
WHERE deleted_at IS NOT NULL AND deleted_at < $1;
`
	tag, err := r.db.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *Postgres) CreateVersion(ctx context.Context, documentID, pageResource string, pageCount int) (*domain.Version, error) {
	id, err := NewID("ver")
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the document row so two concurrent creates cannot take the same
	// version number.
	var ok string
	err = tx.QueryRow(ctx, `
select public_id
from review_documents
where public_id = $1 and deleted_at is null
for update
`, documentID).Scan(&ok)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	// next_version_number on the document survives version deletion, so
	// numbers are never reused.
	var next int
	if err := tx.QueryRow(ctx, `
update review_documents
set next_version_number = next_version_number + 1
where public_id = $1
returning next_version_number
`, documentID).Scan(&next); err != nil {
		return nil, err
	}

	var v domain.Version
	v.ID = id
	v.DocumentID = documentID
	v.VersionNumber = next
	v.PageResource = pageResource
	v.PageCount = pageCount

	err = tx.QueryRow(ctx, `
insert into review_versions (id, document_id, version_number, page_resource, page_count)
values ($1, $2, $3, $4, $5)
returning created_at
`, id, documentID, next, pageResource, pageCount).Scan(&v.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Postgres) GetVersion(ctx context.Context, id string) (*domain.Version, error) {
	const q = `
SELECT id, document_id, version_number, page_resource, page_count, created_at
FROM review_versions
WHERE id = $1;
`
	var v domain.Version
	err := r.db.QueryRow(ctx, q, id).
		Scan(&v.ID, &v.DocumentID, &v.VersionNumber, &v.PageResource, &v.PageCount, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *Postgres) ListVersions(ctx context.Context, documentID string) ([]domain.Version, error) {
	const q = `
SELECT id, document_id, version_number, page_resource, page_count, created_at
FROM review_versions
WHERE document_id = $1
ORDER BY version_number DESC;
`
	rows, err := r.db.Query(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Version, 0, 8)
	for rows.Next() {
		var v domain.Version
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.VersionNumber, &v.PageResource, &v.PageCount, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Postgres) CountVersions(ctx context.Context, documentID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM review_versions WHERE document_id = $1`, documentID).Scan(&n)
	return n, err
}

func (r *Postgres) DeleteVersion(ctx context.Context, id string) error {
	// Annotations and drawings cascade via FK.
	_, err := r.db.Exec(ctx, `DELETE FROM review_versions WHERE id = $1`, id)
	return err
}

const annotationColumns = `
id, version_id, page, x, y, body, category, status,
author_uid, author_name,
coalesce(resolved_by,''), coalesce(resolved_name,''), resolved_at,
coalesce(inherited_from,''), created_at, updated_at`

func scanAnnotation(row pgx.Row) (*domain.Annotation, error) {
	var a domain.Annotation
	err := row.Scan(
		&a.ID, &a.VersionID, &a.Page, &a.X, &a.Y, &a.Body, &a.Category, &a.Status,
		&a.AuthorUID, &a.AuthorName,
		&a.ResolvedBy, &a.ResolvedName, &a.ResolvedAt,
		&a.InheritedFrom, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *Postgres) CreateAnnotation(ctx context.Context, a *domain.Annotation) (*domain.Annotation, error) {
	id, err := NewID("ann")
	if err != nil {
		return nil, err
	}

	q := `
INSERT INTO review_annotations (
  id, version_id, page, x, y, body, category, status,
  author_uid, author_name, inherited_from
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, nullif($11,''))
RETURNING ` + annotationColumns + `;`

	return scanAnnotation(r.db.QueryRow(ctx, q,
		id, a.VersionID, a.Page, a.X, a.Y, a.Body, a.Category, a.Status,
		a.AuthorUID, a.AuthorName, a.InheritedFrom,
	))
}

func (r *Postgres) GetAnnotation(ctx context.Context, id string) (*domain.Annotation, error) {
	q := `SELECT ` + annotationColumns + ` FROM review_annotations WHERE id = $1;`
	return scanAnnotation(r.db.QueryRow(ctx, q, id))
}

func (r *Postgres) ListAnnotations(ctx context.Context, versionID string) ([]domain.Annotation, error) {
	q := `SELECT ` + annotationColumns + `
FROM review_annotations
WHERE version_id = $1
ORDER BY created_at, id;`

	rows, err := r.db.Query(ctx, q, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Annotation, 0, 16)
	for rows.Next() {
		a, err := scanAnnotation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *Postgres) UpdateAnnotation(ctx context.Context, a *domain.Annotation) (*domain.Annotation, error) {
	// Position, page, author and inheritance are immutable; only the
	// editable and status fields are written back.
	q := `
UPDATE review_annotations
SET body = $2, category = $3, status = $4,
    resolved_by = nullif($5,''), resolved_name = nullif($6,''), resolved_at = $7,
    updated_at = now()
WHERE id = $1
RETURNING ` + annotationColumns + `;`

	return scanAnnotation(r.db.QueryRow(ctx, q,
		a.ID, a.Body, a.Category, a.Status,
		a.ResolvedBy, a.ResolvedName, a.ResolvedAt,
	))
}

func (r *Postgres) DeleteAnnotation(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM review_annotations WHERE id = $1`, id)
	return err
}

func (r *Postgres) CreateDrawing(ctx context.Context, d *domain.Drawing) (*domain.Drawing, error) {
	id, err := NewID("drw")
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(d.Shape)
	if err != nil {
		return nil, fmt.Errorf("marshal shape data: %w", err)
	}

	const q = `
INSERT INTO review_drawings (
  id, version_id, page, shape_type, shape_data, color, stroke_width, author_uid, author_name
)
VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9)
RETURNING created_at;
`
	out := *d
	out.ID = id
	err = r.db.QueryRow(ctx, q,
		id, d.VersionID, d.Page, d.ShapeType, string(payload),
		d.Color, d.StrokeWidth, d.AuthorUID, d.AuthorName,
	).Scan(&out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Postgres) ListDrawings(ctx context.Context, versionID string, page int) ([]domain.Drawing, error) {
	const q = `
SELECT id, version_id, page, shape_type, shape_data::text, color, stroke_width, author_uid, author_name, created_at
FROM review_drawings
WHERE version_id = $1 AND page = $2
ORDER BY position;
`
	rows, err := r.db.Query(ctx, q, versionID, page)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Drawing, 0, 16)
	for rows.Next() {
		var d domain.Drawing
		var payload string
		if err := rows.Scan(&d.ID, &d.VersionID, &d.Page, &d.ShapeType, &payload,
			&d.Color, &d.StrokeWidth, &d.AuthorUID, &d.AuthorName, &d.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &d.Shape); err != nil {
			return nil, fmt.Errorf("unmarshal shape data for %s: %w", d.ID, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Postgres) DeleteDrawing(ctx context.Context, id string) (*domain.Drawing, error) {
	const q = `
DELETE FROM review_drawings
WHERE id = $1
RETURNING id, version_id, page, shape_type, shape_data::text, color, stroke_width, author_uid, author_name, created_at;
`
	var d domain.Drawing
	var payload string
	err := r.db.QueryRow(ctx, q, id).Scan(&d.ID, &d.VersionID, &d.Page, &d.ShapeType, &payload,
		&d.Color, &d.StrokeWidth, &d.AuthorUID, &d.AuthorName, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// idempotent delete
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &d.Shape); err != nil {
		return nil, fmt.Errorf("unmarshal shape data for %s: %w", d.ID, err)
	}
	return &d, nil
}

var _ Repository = (*Postgres)(nil)
