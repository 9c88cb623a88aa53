package store

import (
	"database/sql"
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/render"
	"github.com/ayusman/mudra/internal/scene"
)

// Object is a stored placement.
type Object struct {
	scene.Placement
	CreatedAt time.Time
}

// ObjectRepository provides CRUD operations for stored placements. List
// order is insertion order, which is also the scene's draw order.
type ObjectRepository struct {
	db *sql.DB
}

// Objects returns the object repository for this store.
func (s *Store) Objects() *ObjectRepository {
	return &ObjectRepository{db: s.db}
}

const objectColumns = `id, kind, name, shape, mesh, x, y, z, size, scale, color, render_mode, auto_rotate_speed, created_at`

func packColor(c color.RGBA) int64 {
	return int64(c.R)<<16 | int64(c.G)<<8 | int64(c.B)
}

func unpackColor(v int64) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanObject(row scanner) (*Object, error) {
	o := &Object{}
	var kind, mode string
	var col int64
	err := row.Scan(&o.ID, &kind, &o.Name, &o.Shape, &o.Mesh, &o.X, &o.Y, &o.Z,
		&o.Size, &o.Scale, &col, &mode, &o.AutoRotateSpeed, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.Kind = scene.Kind(kind)
	o.RenderMode = render.Mode(mode)
	o.Color = unpackColor(col)
	return o, nil
}

// Create validates p and inserts it after the existing rows. An empty ID
// is replaced with a new UUID.
func (r *ObjectRepository) Create(p *scene.Placement) error {
	if _, err := scene.ParseKind(string(p.Kind)); err != nil {
		return err
	}
	if p.RenderMode != "" {
		if _, err := render.ParseMode(string(p.RenderMode)); err != nil {
			return err
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	_, err := r.db.Exec(
		`INSERT INTO objects (id, kind, name, shape, mesh, x, y, z, size, scale, color, render_mode, auto_rotate_speed, position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM objects), ?)`,
		p.ID, string(p.Kind), p.Name, p.Shape, p.Mesh, p.X, p.Y, p.Z, p.Size, p.Scale,
		packColor(p.Color), string(p.RenderMode), p.AutoRotateSpeed, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert object: %w", err)
	}
	return nil
}

// GetByID retrieves a placement by its ID.
func (r *ObjectRepository) GetByID(id string) (*Object, error) {
	o, err := scanObject(r.db.QueryRow(`SELECT `+objectColumns+` FROM objects WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

// List retrieves every placement in order.
func (r *ObjectRepository) List() ([]*Object, error) {
	rows, err := r.db.Query(`SELECT ` + objectColumns + ` FROM objects ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objects []*Object
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		objects = append(objects, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return objects, nil
}

// Placements returns the stored layout.
func (r *ObjectRepository) Placements() ([]scene.Placement, error) {
	objects, err := r.List()
	if err != nil {
		return nil, err
	}
	out := make([]scene.Placement, len(objects))
	for i, o := range objects {
		out[i] = o.Placement
	}
	return out, nil
}

// Delete removes a placement by its ID.
func (r *ObjectRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM objects WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Replace swaps the whole layout in one transaction.
func (r *ObjectRepository) Replace(placements []scene.Placement) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM objects`); err != nil {
		return err
	}
	now := time.Now()
	for i := range placements {
		p := &placements[i]
		if _, err := scene.ParseKind(string(p.Kind)); err != nil {
			return err
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		_, err := tx.Exec(
			`INSERT INTO objects (id, kind, name, shape, mesh, x, y, z, size, scale, color, render_mode, auto_rotate_speed, position, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, string(p.Kind), p.Name, p.Shape, p.Mesh, p.X, p.Y, p.Z, p.Size, p.Scale,
			packColor(p.Color), string(p.RenderMode), p.AutoRotateSpeed, i, now,
		)
		if err != nil {
			return fmt.Errorf("insert object %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored placements.
func (r *ObjectRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM objects`).Scan(&n)
	return n, err
}
