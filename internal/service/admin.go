package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/pricing"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

var hundred = decimal.NewFromInt(100)

// orderStatuses maps accepted inputs, including the Portuguese labels used by
// the admin screen, to stored statuses.
var orderStatuses = map[string]string{
	models.OrderStatusPending:    models.OrderStatusPending,
	models.OrderStatusProcessing: models.OrderStatusProcessing,
	models.OrderStatusShipped:    models.OrderStatusShipped,
	models.OrderStatusDelivered:  models.OrderStatusDelivered,
	models.OrderStatusCancelled:  models.OrderStatusCancelled,
	"pendente":                   models.OrderStatusPending,
	"processando":                models.OrderStatusProcessing,
	"enviado":                    models.OrderStatusShipped,
	"entregue":                   models.OrderStatusDelivered,
	"cancelado":                  models.OrderStatusCancelled,
}

func NormalizeOrderStatus(s string) (string, bool) {
	st, ok := orderStatuses[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

type AdminService struct {
	Repo      *repo.GormRepo
	Publisher mykafka.Publisher
	Indexer   ProductIndexer
	Images    ImageStore
	Now       func() time.Time
}

func (s *AdminService) ListProducts(ctx context.Context) ([]transport.AdminProduct, error) {
	items, err := s.Repo.ListProductsNewest(ctx)
	if err != nil {
		return nil, storeErr(err, "list products")
	}
	now := clock(s.Now)
	out := make([]transport.AdminProduct, 0, len(items))
	for _, p := range items {
		out = append(out, transport.AdminProductView(p, now))
	}
	return out, nil
}

func (s *AdminService) CreateProduct(ctx context.Context, in transport.ProductInput) (*models.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: nome is required", ErrValidation)
	}
	if in.Price == nil {
		return nil, fmt.Errorf("%w: preco is required", ErrValidation)
	}
	fields, err := productFields(in)
	if err != nil {
		return nil, err
	}

	prod := models.Product{
		Name:  fields["name"].(string),
		Price: fields["price"].(decimal.Decimal),
	}
	if v, ok := fields["description"]; ok {
		prod.Description = v.(string)
	}
	if v, ok := fields["stock"]; ok {
		prod.Stock = v.(int)
	}
	if v, ok := fields["category"]; ok {
		prod.Category = v.(string)
	}

	if in.Image != nil {
		name, err := s.saveImage(in)
		if err != nil {
			return nil, err
		}
		prod.Image = name
	}

	if err := s.Repo.CreateProduct(ctx, &prod); err != nil {
		return nil, storeErr(err, "create product")
	}

	s.index(ctx, prod)
	publish(ctx, s.Publisher, mykafka.TopicProduct, productKey(prod.ID), map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
		"price":     prod.Price,
	})
	return &prod, nil
}

// UpdateProduct writes only the fields present in in. A new image replaces the old reference.
func (s *AdminService) UpdateProduct(ctx context.Context, id uint, in transport.ProductInput) (*models.Product, error) {
	fields, err := productFields(in)
	if err != nil {
		return nil, err
	}

	exists, err := s.Repo.ProductExists(ctx, id)
	if err != nil {
		return nil, storeErr(err, "check product")
	}
	if !exists {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}

	if in.Image != nil {
		name, err := s.saveImage(in)
		if err != nil {
			return nil, err
		}
		fields["image"] = name
	}

	prod, err := s.Repo.UpdateProduct(ctx, id, fields)
	if err != nil {
		return nil, storeErr(err, "update product")
	}

	s.index(ctx, *prod)
	publish(ctx, s.Publisher, mykafka.TopicProduct, productKey(prod.ID), map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
		"price":     prod.Price,
	})
	return prod, nil
}

func (s *AdminService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return storeErr(err, "product")
	}

	if s.Indexer != nil {
		if err := s.Indexer.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_unindex_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Publisher, mykafka.TopicProduct, productKey(id), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *AdminService) ListOrders(ctx context.Context) ([]transport.AdminOrder, error) {
	rows, err := s.Repo.ListAllOrders(ctx)
	if err != nil {
		return nil, storeErr(err, "list orders")
	}
	out := make([]transport.AdminOrder, 0, len(rows))
	for _, r := range rows {
		out = append(out, transport.AdminOrder{Order: r.Order, CustomerName: r.CustomerName, CustomerEmail: r.CustomerEmail})
	}
	return out, nil
}

func (s *AdminService) ListOrderItems(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	if _, err := s.Repo.GetOrder(ctx, orderID); err != nil {
		return nil, storeErr(err, "order")
	}
	items, err := s.Repo.ListOrderItems(ctx, orderID)
	if err != nil {
		return nil, storeErr(err, "list order items")
	}
	return items, nil
}

// UpdateOrderStatus accepts any known status; transitions are not restricted.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, orderID uint, status string) (string, error) {
	st, ok := NormalizeOrderStatus(status)
	if !ok {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if err := s.Repo.UpdateOrderStatus(ctx, orderID, st); err != nil {
		return "", storeErr(err, "order")
	}

	publish(ctx, s.Publisher, mykafka.TopicOrder, strconv.FormatUint(uint64(orderID), 10), map[string]any{
		"type":    "order_status_changed",
		"orderID": orderID,
		"status":  st,
	})
	return st, nil
}

// SavePromotion creates or replaces the single promotion of a product.
func (s *AdminService) SavePromotion(ctx context.Context, productID uint, discount *decimal.Decimal, validUntil string) (*models.Promotion, error) {
	if productID == 0 {
		return nil, fmt.Errorf("%w: produto_id is required", ErrValidation)
	}
	if discount == nil {
		return nil, fmt.Errorf("%w: desconto_percentual is required", ErrValidation)
	}
	if discount.IsNegative() || discount.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: desconto_percentual must be between 0 and 100", ErrValidation)
	}
	until, err := pricing.ParseDate(strings.TrimSpace(validUntil))
	if err != nil {
		return nil, fmt.Errorf("%w: validade must be YYYY-MM-DD", ErrValidation)
	}

	exists, err := s.Repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, storeErr(err, "check product")
	}
	if !exists {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}

	promo := models.Promotion{ProductID: productID, Discount: discount.Round(2), ValidUntil: until}
	if err := s.Repo.UpsertPromotion(ctx, &promo); err != nil {
		return nil, storeErr(err, "save promotion")
	}

	publish(ctx, s.Publisher, mykafka.TopicProduct, productKey(productID), map[string]any{
		"type":       "promotion_saved",
		"productID":  productID,
		"discount":   promo.Discount,
		"validUntil": pricing.FormatDate(until),
	})
	return &promo, nil
}

func (s *AdminService) saveImage(in transport.ProductInput) (string, error) {
	if s.Images == nil {
		return "", fmt.Errorf("%w: image uploads are disabled", ErrValidation)
	}
	name, err := s.Images.Save(in.Image)
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return name, nil
}

func (s *AdminService) index(ctx context.Context, p models.Product) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}

func productKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// productFields validates the present form fields and maps them to columns.
func productFields(in transport.ProductInput) (map[string]any, error) {
	fields := map[string]any{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: nome must not be empty", ErrValidation)
		}
		fields["name"] = name
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		raw := strings.ReplaceAll(strings.TrimSpace(*in.Price), ",", ".")
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: preco is not a number", ErrValidation)
		}
		if !price.IsPositive() {
			return nil, fmt.Errorf("%w: preco must be positive", ErrValidation)
		}
		fields["price"] = price.Round(2)
	}
	if in.Stock != nil {
		stock := 0
		if raw := strings.TrimSpace(*in.Stock); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: estoque is not an integer", ErrValidation)
			}
			stock = n
		}
		if stock < 0 {
			return nil, fmt.Errorf("%w: estoque must not be negative", ErrValidation)
		}
		fields["stock"] = stock
	}
	if in.Category != nil {
		fields["category"] = strings.TrimSpace(*in.Category)
	}

	return fields, nil
}
