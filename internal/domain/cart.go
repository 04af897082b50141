package domain

import "time"

// Cart is the per-user working set of items prior to checkout. One cart per
// user; consumed and cleared atomically when checkout succeeds.
type Cart struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ItemID   int64     `json:"item_id"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
