package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/pricing"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type OrderService struct {
	Repo      *repo.GormRepo
	Publisher mykafka.Publisher
	Metrics   OrderObserver
	Now       func() time.Time
}

// PlaceOrder turns the user's cart into a pending order. Prices are resolved once,
// here, and copied onto the order items. Loading the cart, writing the order and
// its items, and clearing the cart happen in one transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.place", "user_id", userID)
	now := clock(s.Now)

	var (
		order models.Order
		lines []models.OrderItem
	)
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.ListCart(ctx, userID)
		if err != nil {
			return storeErr(err, "load cart")
		}

		total := decimal.Zero
		lines = make([]models.OrderItem, 0, len(cart))
		for _, it := range cart {
			if it.Product.ID == 0 {
				continue
			}
			unit := pricing.EffectivePrice(it.Product, now)
			total = total.Add(pricing.LineTotal(unit, it.Quantity))
			lines = append(lines, models.OrderItem{
				ProductID:    it.ProductID,
				Quantity:     it.Quantity,
				UnitPrice:    unit,
				ProductName:  it.Product.Name,
				ProductImage: it.Product.Image,
			})
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		order = models.Order{
			UserID:    userID,
			Status:    models.OrderStatusPending,
			Total:     total,
			CreatedAt: now,
		}
		if err := tx.CreateOrder(ctx, &order); err != nil {
			return fmt.Errorf("%w: create order: %w", ErrPersistence, err)
		}

		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := tx.CreateOrderItems(ctx, lines); err != nil {
			return fmt.Errorf("%w: create order items: %w", ErrPersistence, err)
		}

		if err := tx.ClearCart(ctx, userID); err != nil {
			return fmt.Errorf("%w: clear cart: %w", ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			l.Info("place_order_rejected", "reason", "empty cart")
			return nil, err
		case errors.Is(err, ErrPersistence):
			l.Error("place_order_failed", "error", err)
			return nil, err
		default:
			l.Error("place_order_failed", "reason", "transaction", "error", err)
			return nil, fmt.Errorf("%w: place order: %w", ErrPersistence, err)
		}
	}

	items := make([]map[string]any, 0, len(lines))
	for _, it := range lines {
		items = append(items, map[string]any{
			"productID": it.ProductID,
			"quantity":  it.Quantity,
			"unitPrice": it.UnitPrice,
		})
	}
	publish(ctx, s.Publisher, mykafka.TopicOrder, strconv.FormatUint(uint64(order.ID), 10), map[string]any{
		"type":    "order_placed",
		"orderID": order.ID,
		"userID":  userID,
		"total":   order.Total,
		"items":   items,
	})
	if s.Metrics != nil {
		s.Metrics.ObserveOrder(order.Total)
	}

	l.Info("order_placed", "order_id", order.ID, "total", order.Total.String(), "items", len(lines))
	return &order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.Repo.ListOrders(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "list orders")
	}
	return orders, nil
}

// ListItems only returns items of orders owned by userID; anything else is ErrNotFound.
func (s *OrderService) ListItems(ctx context.Context, userID, orderID uint) ([]models.OrderItem, error) {
	if _, err := s.Repo.GetUserOrder(ctx, userID, orderID); err != nil {
		return nil, storeErr(err, "order")
	}
	items, err := s.Repo.ListOrderItems(ctx, orderID)
	if err != nil {
		return nil, storeErr(err, "list order items")
	}
	return items, nil
}
