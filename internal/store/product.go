package store

import (
	"database/sql"
	"fmt"

	"github.com/dstrand/tally/internal/model"
)

type ProductStore struct {
	db DBTX
}

func NewProductStore(db DBTX) *ProductStore {
	return &ProductStore{db: db}
}

const productCols = `id, name, price, quantity, category_id, local_id, synced, owner_id`

func scanProduct(scanner interface{ Scan(...any) error }) (*model.Product, error) {
	var p model.Product
	var categoryID, localID, ownerID sql.NullString
	err := scanner.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &categoryID, &localID, &p.Synced, &ownerID)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		p.CategoryID = &categoryID.String
	}
	if localID.Valid {
		p.LocalID = &localID.String
	}
	if ownerID.Valid {
		p.OwnerID = &ownerID.String
	}
	return &p, nil
}

func (s *ProductStore) Get(id string) (*model.Product, error) {
	row := s.db.QueryRow(`SELECT `+productCols+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *ProductStore) List() ([]model.Product, error) {
	return s.list(`SELECT ` + productCols + ` FROM products ORDER BY rowid`)
}

func (s *ProductStore) ListByCategory(categoryID string) ([]model.Product, error) {
	return s.list(`SELECT `+productCols+` FROM products WHERE category_id = ? ORDER BY rowid`, categoryID)
}

// ListUnsynced returns products not yet confirmed written to the remote store.
func (s *ProductStore) ListUnsynced() ([]model.Product, error) {
	return s.list(`SELECT ` + productCols + ` FROM products WHERE synced = 0 ORDER BY rowid`)
}

func (s *ProductStore) list(query string, args ...any) ([]model.Product, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Put inserts or replaces the product by id.
func (s *ProductStore) Put(p model.Product) error {
	_, err := s.db.Exec(`
		INSERT INTO products (id, name, price, quantity, category_id, local_id, synced, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			quantity = excluded.quantity,
			category_id = excluded.category_id,
			local_id = excluded.local_id,
			synced = excluded.synced,
			owner_id = excluded.owner_id`,
		p.ID, p.Name, p.Price, p.Quantity, p.CategoryID, p.LocalID, p.Synced, p.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("put product: %w", err)
	}
	return nil
}

// MarkSynced flags the product as confirmed on the remote store.
func (s *ProductStore) MarkSynced(id string) error {
	if _, err := s.db.Exec(`UPDATE products SET synced = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark product synced: %w", err)
	}
	return nil
}

// Delete removes the product. Deleting an absent id is not an error.
func (s *ProductStore) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM products WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *ProductStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM products`); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}
	return nil
}
