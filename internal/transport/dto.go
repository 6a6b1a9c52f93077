package transport

import (
	"encoding/json"
	"mime/multipart"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/pricing"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type RegisterRequest struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type UserSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"nome"`
	Role string `json:"tipo"`
}

type LoginResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}

type CurrentUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
	Role  string `json:"tipo"`
}

// Product is the public view of a catalog entry with its price already resolved.
type Product struct {
	ID          uint             `json:"id"`
	Name        string           `json:"nome"`
	Description string           `json:"descricao"`
	Price       decimal.Decimal  `json:"preco"`
	Stock       int              `json:"estoque"`
	Category    string           `json:"categoria"`
	Image       string           `json:"imagem"`
	Discount    *decimal.Decimal `json:"desconto_percentual"`
	FinalPrice  decimal.Decimal  `json:"preco_final"`
}

// AdminProduct shows the stored promotion even after it expired.
type AdminProduct struct {
	Product
	Discount        *decimal.Decimal `json:"desconto_percentual"`
	ValidUntil      *string          `json:"validade"`
	PromotionActive bool             `json:"promocao_ativa"`
}

type Category struct {
	Category string `json:"categoria"`
}

type SearchResponse struct {
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Size     int       `json:"size"`
	Products []Product `json:"products"`
}

type CartLine struct {
	ID         uint            `json:"id"`
	UserID     uint            `json:"user_id"`
	ProductID  uint            `json:"produto_id"`
	Quantity   int             `json:"quantidade"`
	Name       string          `json:"nome"`
	Price      decimal.Decimal `json:"preco"`
	Image      string          `json:"imagem"`
	Stock      int             `json:"estoque"`
	FinalPrice decimal.Decimal `json:"preco_final"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// AddToCartRequest accepts ids and quantities either as JSON numbers or numeric strings.
type AddToCartRequest struct {
	ProductID json.Number  `json:"produto_id"`
	Quantity  *json.Number `json:"quantidade"`
}

type UpdateCartRequest struct {
	Quantity json.Number `json:"quantidade"`
}

type PlaceOrderResponse struct {
	Message string          `json:"message"`
	OrderID uint            `json:"orderId"`
	Total   decimal.Decimal `json:"total"`
}

type AdminOrder struct {
	models.Order
	CustomerName  string `json:"cliente_nome"`
	CustomerEmail string `json:"cliente_email"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type PromotionRequest struct {
	ProductID  json.Number      `json:"produto_id"`
	Discount   *decimal.Decimal `json:"desconto_percentual"`
	ValidUntil string           `json:"validade"`
}

// ProductInput carries admin form fields. Nil means the field was not sent,
// which on update leaves the stored value untouched.
type ProductInput struct {
	Name        *string
	Description *string
	Price       *string
	Stock       *string
	Category    *string
	Image       *multipart.FileHeader
}

type CreatedResponse struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
}

func ProductView(p models.Product, asOf time.Time) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Image:       p.Image,
		Discount:    pricing.Discount(p, asOf),
		FinalPrice:  pricing.EffectivePrice(p, asOf),
	}
}

func ProductViews(items []models.Product, asOf time.Time) []Product {
	out := make([]Product, 0, len(items))
	for _, p := range items {
		out = append(out, ProductView(p, asOf))
	}
	return out
}

func AdminProductView(p models.Product, asOf time.Time) AdminProduct {
	v := AdminProduct{Product: ProductView(p, asOf)}
	if p.Promotion != nil {
		d := p.Promotion.Discount
		until := pricing.FormatDate(p.Promotion.ValidUntil)
		v.Discount = &d
		v.ValidUntil = &until
		v.PromotionActive = pricing.Active(p.Promotion, asOf)
	}
	return v
}

func CartLineView(item models.CartItem, asOf time.Time) CartLine {
	final := pricing.EffectivePrice(item.Product, asOf)
	return CartLine{
		ID:         item.ID,
		UserID:     item.UserID,
		ProductID:  item.ProductID,
		Quantity:   item.Quantity,
		Name:       item.Product.Name,
		Price:      item.Product.Price,
		Image:      item.Product.Image,
		Stock:      item.Product.Stock,
		FinalPrice: final,
		Subtotal:   pricing.LineTotal(final, item.Quantity),
	}
}
