package model

type Product struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	CategoryID *string `json:"category_id,omitempty"`
	LocalID    *string `json:"local_id,omitempty"`
	Synced     bool    `json:"synced"`
	OwnerID    *string `json:"owner_id,omitempty"`
}
