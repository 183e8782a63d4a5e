package register

import (
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/dstrand/tally/internal/database"
	"github.com/dstrand/tally/internal/model"
	"github.com/dstrand/tally/internal/store"
)

func setupService(t *testing.T) (*Service, *store.Stores, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(db, logger), store.New(db), db
}

func TestAddProduct(t *testing.T) {
	svc, st, _ := setupService(t)

	p, err := svc.AddProduct(ProductInput{Name: "Coke", Price: 1.5, Quantity: 10})
	if err != nil {
		t.Fatalf("add product: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected generated id")
	}
	if p.LocalID == nil || *p.LocalID != p.ID {
		t.Errorf("local_id = %v, want %q", p.LocalID, p.ID)
	}
	if p.Synced {
		t.Error("expected synced=false")
	}

	stored, err := st.Products.Get(p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored == nil || stored.Quantity != 10 {
		t.Fatalf("stored = %+v", stored)
	}

	ops, err := st.Pending.All()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("pending ops = %d, want 1", len(ops))
	}
	if ops[0].EntityType != model.EntityProduct || ops[0].Action != model.ActionAdd {
		t.Errorf("op = %s/%s, want product/add", ops[0].EntityType, ops[0].Action)
	}

	var payload model.Product
	if err := json.Unmarshal(ops[0].Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.ID != p.ID {
		t.Errorf("payload id = %q, want %q", payload.ID, p.ID)
	}
}

func TestAddProductValidation(t *testing.T) {
	svc, st, _ := setupService(t)

	cases := []struct {
		name string
		in   ProductInput
	}{
		{"empty name", ProductInput{Name: "  ", Price: 1}},
		{"negative price", ProductInput{Name: "Coke", Price: -0.5}},
		{"negative quantity", ProductInput{Name: "Coke", Price: 1, Quantity: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.AddProduct(tc.in); !IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	// Rejected input must leave no trace: no rows, no queued ops.
	products, _ := st.Products.List()
	if len(products) != 0 {
		t.Errorf("products = %d, want 0", len(products))
	}
	n, _ := st.Pending.Count()
	if n != 0 {
		t.Errorf("pending = %d, want 0", n)
	}
}

func TestUpdateProduct(t *testing.T) {
	svc, st, _ := setupService(t)

	p, err := svc.AddProduct(ProductInput{Name: "Coke", Price: 1.5, Quantity: 10})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	// Pretend a sync pass confirmed it.
	if err := st.Products.MarkSynced(p.ID); err != nil {
		t.Fatalf("mark synced: %v", err)
	}

	p.Price = 1.75
	updated, err := svc.UpdateProduct(*p)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Synced {
		t.Error("update must re-dirty the record")
	}

	ops, _ := st.Pending.All()
	if len(ops) != 2 {
		t.Fatalf("pending ops = %d, want 2", len(ops))
	}
	if ops[1].Action != model.ActionUpdate {
		t.Errorf("second op = %s, want update", ops[1].Action)
	}
}

func TestDeleteProduct(t *testing.T) {
	svc, st, _ := setupService(t)

	p, _ := svc.AddProduct(ProductInput{Name: "Coke", Price: 1.5})
	if err := svc.DeleteProduct(p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, _ := st.Products.Get(p.ID)
	if got != nil {
		t.Error("expected row removed")
	}

	ops, _ := st.Pending.All()
	if len(ops) != 2 || ops[1].Action != model.ActionDelete {
		t.Fatalf("ops = %+v, want add then delete", ops)
	}
	var ref struct {
		ID string `json:"id"`
	}
	json.Unmarshal(ops[1].Payload, &ref)
	if ref.ID != p.ID {
		t.Errorf("delete payload id = %q, want %q", ref.ID, p.ID)
	}
}

func TestAddSaleDecrementsProduct(t *testing.T) {
	svc, st, _ := setupService(t)

	p, _ := svc.AddProduct(ProductInput{Name: "Coke", Price: 1.5, Quantity: 10})

	sale, err := svc.AddSale(SaleInput{ProductID: &p.ID, Quantity: 3, UnitPrice: 1.5, Date: "2024-06-01"})
	if err != nil {
		t.Fatalf("add sale: %v", err)
	}
	if sale.Total != 4.5 {
		t.Errorf("total = %v, want 4.5", sale.Total)
	}
	if sale.ProductName != "Coke" {
		t.Errorf("product_name = %q, want snapshot of product name", sale.ProductName)
	}

	after, _ := st.Products.Get(p.ID)
	if after.Quantity != 7 {
		t.Errorf("quantity = %d, want 7", after.Quantity)
	}
	if after.Synced {
		t.Error("decremented product must be dirty")
	}

	// Two local changes (sale + product) but exactly one queued op, of
	// type sale: the remote performs the matching decrement itself.
	ops, _ := st.Pending.All()
	saleOps := 0
	for _, op := range ops {
		if op.EntityType == model.EntitySale {
			saleOps++
		}
	}
	if saleOps != 1 {
		t.Errorf("sale ops = %d, want 1", saleOps)
	}
	if len(ops) != 2 { // product add + sale add
		t.Errorf("total ops = %d, want 2", len(ops))
	}
}

func TestAddSaleClampsAtZero(t *testing.T) {
	svc, st, _ := setupService(t)

	p, _ := svc.AddProduct(ProductInput{Name: "Coke", Price: 1.5, Quantity: 10})

	if _, err := svc.AddSale(SaleInput{ProductID: &p.ID, Quantity: 20, UnitPrice: 1.5}); err != nil {
		t.Fatalf("add sale: %v", err)
	}

	after, _ := st.Products.Get(p.ID)
	if after.Quantity != 0 {
		t.Errorf("quantity = %d, want 0 (clamped)", after.Quantity)
	}
}

func TestAddSaleMissingProduct(t *testing.T) {
	svc, st, _ := setupService(t)

	gone := "no-such-product"
	sale, err := svc.AddSale(SaleInput{ProductID: &gone, ProductName: "Coke", Quantity: 1, UnitPrice: 1.5})
	if err != nil {
		t.Fatalf("add sale: %v", err)
	}
	if sale.ProductName != "Coke" {
		t.Errorf("product_name = %q, want provided snapshot", sale.ProductName)
	}

	stored, _ := st.Sales.Get(sale.ID)
	if stored == nil {
		t.Fatal("expected sale row despite missing product")
	}
}

func TestAddSaleValidation(t *testing.T) {
	svc, _, _ := setupService(t)

	if _, err := svc.AddSale(SaleInput{ProductName: "Coke", Quantity: 0, UnitPrice: 1}); !IsValidation(err) {
		t.Fatalf("expected ValidationError for zero quantity, got %v", err)
	}
	if _, err := svc.AddSale(SaleInput{ProductName: "Coke", Quantity: 1, UnitPrice: -1}); !IsValidation(err) {
		t.Fatalf("expected ValidationError for negative price, got %v", err)
	}
}

func TestAddSaleDefaultsDate(t *testing.T) {
	svc, _, _ := setupService(t)

	sale, err := svc.AddSale(SaleInput{ProductName: "Coke", Quantity: 1, UnitPrice: 1})
	if err != nil {
		t.Fatalf("add sale: %v", err)
	}
	if len(sale.Date) != len("2006-01-02") {
		t.Errorf("date = %q, want YYYY-MM-DD", sale.Date)
	}
}

func TestCategoryMutators(t *testing.T) {
	svc, st, _ := setupService(t)

	c, err := svc.AddCategory(CategoryInput{Name: "Drinks", Color: "#03a9f4"})
	if err != nil {
		t.Fatalf("add category: %v", err)
	}

	c.Name = "Cold Drinks"
	if _, err := svc.UpdateCategory(*c); err != nil {
		t.Fatalf("update category: %v", err)
	}
	if err := svc.DeleteCategory(c.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	ops, _ := st.Pending.All()
	if len(ops) != 3 {
		t.Fatalf("ops = %d, want 3", len(ops))
	}
	wantActions := []model.Action{model.ActionAdd, model.ActionUpdate, model.ActionDelete}
	for i, op := range ops {
		if op.EntityType != model.EntityCategory || op.Action != wantActions[i] {
			t.Errorf("op %d = %s/%s, want category/%s", i, op.EntityType, op.Action, wantActions[i])
		}
	}

	if _, err := svc.AddCategory(CategoryInput{Name: ""}); !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
