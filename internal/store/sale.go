package store

import (
	"database/sql"
	"fmt"

	"github.com/dstrand/tally/internal/model"
)

type SaleStore struct {
	db DBTX
}

func NewSaleStore(db DBTX) *SaleStore {
	return &SaleStore{db: db}
}

const saleCols = `id, product_id, product_name, quantity, unit_price, total, sale_date, local_id, synced, owner_id`

func scanSale(scanner interface{ Scan(...any) error }) (*model.Sale, error) {
	var s model.Sale
	var productID, localID, ownerID sql.NullString
	err := scanner.Scan(&s.ID, &productID, &s.ProductName, &s.Quantity, &s.UnitPrice, &s.Total, &s.Date, &localID, &s.Synced, &ownerID)
	if err != nil {
		return nil, err
	}
	if productID.Valid {
		s.ProductID = &productID.String
	}
	if localID.Valid {
		s.LocalID = &localID.String
	}
	if ownerID.Valid {
		s.OwnerID = &ownerID.String
	}
	return &s, nil
}

func (s *SaleStore) Get(id string) (*model.Sale, error) {
	row := s.db.QueryRow(`SELECT `+saleCols+` FROM sales WHERE id = ?`, id)
	sale, err := scanSale(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return sale, nil
}

func (s *SaleStore) List() ([]model.Sale, error) {
	return s.list(`SELECT ` + saleCols + ` FROM sales ORDER BY rowid`)
}

// ListByDate returns the sales recorded on a YYYY-MM-DD calendar day.
func (s *SaleStore) ListByDate(date string) ([]model.Sale, error) {
	return s.list(`SELECT `+saleCols+` FROM sales WHERE sale_date = ?`, date)
}

func (s *SaleStore) ListUnsynced() ([]model.Sale, error) {
	return s.list(`SELECT ` + saleCols + ` FROM sales WHERE synced = 0 ORDER BY rowid`)
}

func (s *SaleStore) list(query string, args ...any) ([]model.Sale, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var out []model.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, *sale)
	}
	return out, rows.Err()
}

// Put inserts or replaces the sale by id.
func (s *SaleStore) Put(sale model.Sale) error {
	_, err := s.db.Exec(`
		INSERT INTO sales (id, product_id, product_name, quantity, unit_price, total, sale_date, local_id, synced, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			product_id = excluded.product_id,
			product_name = excluded.product_name,
			quantity = excluded.quantity,
			unit_price = excluded.unit_price,
			total = excluded.total,
			sale_date = excluded.sale_date,
			local_id = excluded.local_id,
			synced = excluded.synced,
			owner_id = excluded.owner_id`,
		sale.ID, sale.ProductID, sale.ProductName, sale.Quantity, sale.UnitPrice, sale.Total, sale.Date, sale.LocalID, sale.Synced, sale.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("put sale: %w", err)
	}
	return nil
}

// MarkSynced flags the sale as confirmed on the remote store.
func (s *SaleStore) MarkSynced(id string) error {
	if _, err := s.db.Exec(`UPDATE sales SET synced = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark sale synced: %w", err)
	}
	return nil
}

func (s *SaleStore) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM sales WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	return nil
}

func (s *SaleStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM sales`); err != nil {
		return fmt.Errorf("clear sales: %w", err)
	}
	return nil
}
