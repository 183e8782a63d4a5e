package model

// Sale is immutable after creation except for the Synced flag.
// ProductName is a denormalized snapshot so the sale survives deletion
// of the product it references.
type Sale struct {
	ID          string  `json:"id"`
	ProductID   *string `json:"product_id,omitempty"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
	Date        string  `json:"date"` // YYYY-MM-DD
	LocalID     *string `json:"local_id,omitempty"`
	Synced      bool    `json:"synced"`
	OwnerID     *string `json:"owner_id,omitempty"`
}
