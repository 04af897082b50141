package service

import (
	"context"
	"log"

	"github.com/csae99/ayur-sub001/internal/cache"
	"github.com/csae99/ayur-sub001/internal/domain"
)

type CartStore interface {
	GetCart(ctx context.Context, userID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, itemID int64, quantity int) error
	SetItemQuantity(ctx context.Context, userID, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID int64) error
	Clear(ctx context.Context, userID int64) error
}

// CartService fronts the cart store with a read-through cache. Reads hit
// Redis first; every mutation writes to Postgres and drops the cached entry,
// so the next read repopulates from the source of truth.
type CartService struct {
	store CartStore
	cache cache.CartCache
}

func NewCartService(store CartStore, cartCache cache.CartCache) *CartService {
	return &CartService{store: store, cache: cartCache}
}

func (s *CartService) GetCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	if s.cache != nil {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if err != cache.ErrCacheMiss {
			log.Printf("cart cache read failed for user %d: %v", userID, err)
		}
	}

	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, cart); err != nil {
			log.Printf("cart cache write failed for user %d: %v", userID, err)
		}
	}
	return cart, nil
}

func (s *CartService) AddItem(ctx context.Context, userID, itemID int64, quantity int) (*domain.Cart, error) {
	if err := s.store.AddItem(ctx, userID, itemID, quantity); err != nil {
		return nil, err
	}
	s.Invalidate(ctx, userID)
	return s.GetCart(ctx, userID)
}

func (s *CartService) SetItemQuantity(ctx context.Context, userID, itemID int64, quantity int) (*domain.Cart, error) {
	if err := s.store.SetItemQuantity(ctx, userID, itemID, quantity); err != nil {
		return nil, err
	}
	s.Invalidate(ctx, userID)
	return s.GetCart(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID int64) (*domain.Cart, error) {
	if err := s.store.RemoveItem(ctx, userID, itemID); err != nil {
		return nil, err
	}
	s.Invalidate(ctx, userID)
	return s.GetCart(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID int64) error {
	if err := s.store.Clear(ctx, userID); err != nil {
		return err
	}
	s.Invalidate(ctx, userID)
	return nil
}

// Invalidate drops the cached cart. Checkout calls this after it consumes the
// cart inside its own transaction.
func (s *CartService) Invalidate(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cart cache invalidation failed for user %d: %v", userID, err)
	}
}
