package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CartService struct {
	Repo      *repo.GormRepo
	Publisher mykafka.Publisher
	Now       func() time.Time
}

func (s *CartService) List(ctx context.Context, userID uint) ([]transport.CartLine, error) {
	items, err := s.Repo.ListCart(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "list cart")
	}

	now := clock(s.Now)
	out := make([]transport.CartLine, 0, len(items))
	for _, it := range items {
		out = append(out, transport.CartLineView(it, now))
	}
	return out, nil
}

// Add puts qty units of the product in the cart, summing with any existing row.
// Stock is not checked.
func (s *CartService) Add(ctx context.Context, userID, productID uint, qty int) error {
	if productID == 0 {
		return fmt.Errorf("%w: produto_id is required", ErrValidation)
	}
	if qty < 1 {
		return fmt.Errorf("%w: quantidade must be at least 1", ErrValidation)
	}

	exists, err := s.Repo.ProductExists(ctx, productID)
	if err != nil {
		return storeErr(err, "check product")
	}
	if !exists {
		return fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}

	item := models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	if err := s.Repo.AddToCart(ctx, &item); err != nil {
		return storeErr(err, "add to cart")
	}

	publish(ctx, s.Publisher, mykafka.TopicCart, strconv.FormatUint(uint64(userID), 10), map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": productID,
		"quantity":  item.Quantity,
	})
	return nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uint, qty int) error {
	if qty < 1 {
		return fmt.Errorf("%w: quantidade must be at least 1", ErrValidation)
	}
	if err := s.Repo.UpdateCartQuantity(ctx, userID, itemID, qty); err != nil {
		return storeErr(err, "cart item")
	}
	return nil
}

func (s *CartService) Remove(ctx context.Context, userID, itemID uint) error {
	if err := s.Repo.DeleteCartItem(ctx, userID, itemID); err != nil {
		return storeErr(err, "cart item")
	}
	return nil
}
