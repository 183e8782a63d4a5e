// Package register holds the domain mutators: the only sanctioned way to
// change product, sale, and category state locally. Every mutator runs as
// one transaction that writes the affected rows and enqueues exactly one
// pending operation for later replay against the remote store.
package register

import (
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dstrand/tally/internal/model"
	"github.com/dstrand/tally/internal/store"
)

type Service struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewService(db *sql.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// ProductInput is the fully-typed input for AddProduct. OwnerID is the
// optional tenant scope, resolved once at the API boundary.
type ProductInput struct {
	Name       string
	Price      float64
	Quantity   int
	CategoryID *string
	OwnerID    *string
}

// SaleInput is the fully-typed input for AddSale. ProductID may be nil
// for ad hoc sales; ProductName is only consulted when it is.
type SaleInput struct {
	ProductID   *string
	ProductName string
	Quantity    int
	UnitPrice   float64
	Date        string
	OwnerID     *string
}

type CategoryInput struct {
	Name  string
	Color string
}

// deleteRef is the payload enqueued for delete operations.
type deleteRef struct {
	ID string `json:"id"`
}

// AddProduct creates a locally-owned product and queues its creation for
// replay. The generated id is provisional until the next snapshot pull.
func (s *Service) AddProduct(in ProductInput) (*model.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if in.Price < 0 {
		return nil, &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if in.Quantity < 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}

	id := uuid.NewString()
	p := model.Product{
		ID:         id,
		Name:       in.Name,
		Price:      in.Price,
		Quantity:   in.Quantity,
		CategoryID: in.CategoryID,
		LocalID:    &id,
		Synced:     false,
		OwnerID:    in.OwnerID,
	}

	err := store.WithTx(s.db, func(st *store.Stores) error {
		if err := st.Products.Put(p); err != nil {
			return err
		}
		return st.Pending.Enqueue(model.EntityProduct, model.ActionAdd, p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product added", "id", p.ID, "name", p.Name)
	return &p, nil
}

// UpdateProduct replaces the product row wholesale and queues the update.
// Partial-patch convenience is a caller concern.
func (s *Service) UpdateProduct(p model.Product) (*model.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.Price < 0 {
		return nil, &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if p.Quantity < 0 {
		p.Quantity = 0
	}
	p.Synced = false

	err := store.WithTx(s.db, func(st *store.Stores) error {
		if err := st.Products.Put(p); err != nil {
			return err
		}
		return st.Pending.Enqueue(model.EntityProduct, model.ActionUpdate, p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product updated", "id", p.ID)
	return &p, nil
}

func (s *Service) DeleteProduct(id string) error {
	err := store.WithTx(s.db, func(st *store.Stores) error {
		if err := st.Products.Delete(id); err != nil {
			return err
		}
		return st.Pending.Enqueue(model.EntityProduct, model.ActionDelete, deleteRef{ID: id})
	})
	if err != nil {
		return err
	}

	s.logger.Info("product deleted", "id", id)
	return nil
}

// AddSale records a sale and decrements the referenced product's quantity
// in the same transaction, clamped at zero. The decrement is silently
// skipped when the product no longer exists; the sale keeps its own name
// snapshot and stays valid. Exactly one pending operation is enqueued —
// the remote store performs the matching decrement server-side when the
// sale replays.
func (s *Service) AddSale(in SaleInput) (*model.Sale, error) {
	if in.Quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if in.UnitPrice < 0 {
		return nil, &ValidationError{Field: "unit_price", Reason: "must not be negative"}
	}
	if in.Date == "" {
		in.Date = time.Now().Format("2006-01-02")
	}

	id := uuid.NewString()
	sale := model.Sale{
		ID:          id,
		ProductID:   in.ProductID,
		ProductName: strings.TrimSpace(in.ProductName),
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Total:       float64(in.Quantity) * in.UnitPrice,
		Date:        in.Date,
		LocalID:     &id,
		Synced:      false,
		OwnerID:     in.OwnerID,
	}

	err := store.WithTx(s.db, func(st *store.Stores) error {
		if in.ProductID != nil {
			p, err := st.Products.Get(*in.ProductID)
			if err != nil {
				return err
			}
			if p != nil {
				// Snapshot the name at sale time.
				sale.ProductName = p.Name
				p.Quantity = max(0, p.Quantity-in.Quantity)
				p.Synced = false
				if err := st.Products.Put(*p); err != nil {
					return err
				}
			}
		}
		if sale.ProductName == "" {
			return &ValidationError{Field: "product_name", Reason: "must not be empty"}
		}
		if err := st.Sales.Put(sale); err != nil {
			return err
		}
		return st.Pending.Enqueue(model.EntitySale, model.ActionAdd, sale)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale recorded", "id", sale.ID, "product", sale.ProductName, "total", sale.Total)
	return &sale, nil
}

// AddCategory creates a category and queues its creation. Categories
// carry no per-row synced flag.
func (s *Service) AddCategory(in CategoryInput) (*model.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	c := model.Category{
		ID:    uuid.NewString(),
		Name:  in.Name,
		Color: in.Color,
	}

	err := store.WithTx(s.db, func(st *store.Stores) error {
		if err := st.Categories.Put(c); err != nil {
			return err
		}
		return st.Pending.Enqueue(model.EntityCategory, model.ActionAdd, c)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("category added", "id", c.ID, "name", c.Name)
	return &c, nil
}

func (s *Service) UpdateCategory(c model.Category) (*model.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	err := store.WithTx(s.db, func(st *store.Stores) error {
		if err := st.Categories.Put(c); err != nil {
			return err
		}
		return st.Pending.Enqueue(model.EntityCategory, model.ActionUpdate, c)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("category updated", "id", c.ID)
	return &c, nil
}

func (s *Service) DeleteCategory(id string) error {
	err := store.WithTx(s.db, func(st *store.Stores) error {
		if err := st.Categories.Delete(id); err != nil {
			return err
		}
		return st.Pending.Enqueue(model.EntityCategory, model.ActionDelete, deleteRef{ID: id})
	})
	if err != nil {
		return err
	}

	s.logger.Info("category deleted", "id", id)
	return nil
}
