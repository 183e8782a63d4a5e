package store

import (
	"database/sql"
	"fmt"

	"github.com/dstrand/tally/internal/model"
)

type CategoryStore struct {
	db DBTX
}

func NewCategoryStore(db DBTX) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryCols = `id, name, color`

func scanCategory(scanner interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	if err := scanner.Scan(&c.ID, &c.Name, &c.Color); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryStore) Get(id string) (*model.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryCols+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *CategoryStore) List() ([]model.Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryCols + ` FROM categories ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Put inserts or replaces the category by id.
func (s *CategoryStore) Put(c model.Category) error {
	_, err := s.db.Exec(`
		INSERT INTO categories (id, name, color) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, color = excluded.color`,
		c.ID, c.Name, c.Color,
	)
	if err != nil {
		return fmt.Errorf("put category: %w", err)
	}
	return nil
}

// Delete removes the category. Deleting an absent id is not an error.
func (s *CategoryStore) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *CategoryStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM categories`); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	return nil
}
