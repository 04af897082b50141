package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/csae99/ayur-sub001/internal/domain"
)

// CartStore persists the per-user cart aggregate. Add sums quantities,
// update overwrites, zero removes.
type CartStore struct {
	db *sql.DB
}

func NewCartStore(db *sql.DB) *CartStore {
	return &CartStore{db: db}
}

// GetCart returns the user's cart, creating an empty one on first use.
func (s *CartStore) GetCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart := &domain.Cart{UserID: userID}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO carts (user_id, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
		RETURNING id, created_at, updated_at`, userID,
	).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert cart: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, quantity, added_at FROM cart_items
		WHERE cart_id = $1 ORDER BY added_at, item_id`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ItemID, &item.Quantity, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	return cart, rows.Err()
}

// AddItem merges quantity into an existing line or creates one.
func (s *CartStore) AddItem(ctx context.Context, userID, itemID int64, quantity int) error {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_items (cart_id, item_id, quantity, added_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (cart_id, item_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		cart.ID, itemID, quantity); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return s.touch(ctx, cart.ID)
}

// SetItemQuantity overwrites a line's quantity; zero removes the line.
func (s *CartStore) SetItemQuantity(ctx context.Context, userID, itemID int64, quantity int) error {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return err
	}

	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, itemID)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE cart_items SET quantity = $1 WHERE cart_id = $2 AND item_id = $3`,
		quantity, cart.ID, itemID)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("cart item %d: %w", itemID, domain.ErrNotFound)
	}
	return s.touch(ctx, cart.ID)
}

func (s *CartStore) RemoveItem(ctx context.Context, userID, itemID int64) error {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM cart_items WHERE cart_id = $1 AND item_id = $2`,
		cart.ID, itemID); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return s.touch(ctx, cart.ID)
}

func (s *CartStore) Clear(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE cart_id IN (SELECT id FROM carts WHERE user_id = $1)`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *CartStore) touch(ctx context.Context, cartID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}
