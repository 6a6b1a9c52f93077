package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"        json:"id"`
	Name         string    `gorm:"not null"                        json:"nome"`
	Email        string    `gorm:"uniqueIndex;not null"            json:"email"`
	PasswordHash string    `gorm:"not null"                        json:"-"`
	Role         string    `gorm:"not null;default:customer"       json:"tipo"`
	CreatedAt    time.Time `                                       json:"-"`
}

type Session struct {
	ID        uint      `gorm:"primaryKey"              json:"id"`
	JTI       string    `gorm:"uniqueIndex;not null"    json:"jti"`
	UserID    uint      `gorm:"index;not null"          json:"user_id"`
	Role      string    `gorm:"not null"                json:"role"`
	ExpiresAt time.Time `gorm:"not null"                json:"expires_at"`
	Revoked   bool      `gorm:"default:false"           json:"revoked"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"        json:"id"`
	Name        string          `gorm:"not null"                        json:"nome"`
	Description string          `                                       json:"descricao"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"     json:"preco"`
	Stock       int             `gorm:"not null;default:0"              json:"estoque"`
	Category    string          `gorm:"index"                           json:"categoria"`
	Image       string          `                                       json:"imagem"`
	Promotion   *Promotion      `gorm:"foreignKey:ProductID"            json:"-"`
	CreatedAt   time.Time       `                                       json:"-"`
	UpdatedAt   time.Time       `                                       json:"-"`
}

// Promotion is keyed by product: saving a new one replaces the previous row.
type Promotion struct {
	ID         uint            `gorm:"primaryKey"                      json:"id"`
	ProductID  uint            `gorm:"uniqueIndex;not null"            json:"produto_id"`
	Discount   decimal.Decimal `gorm:"type:decimal(5,2);not null"      json:"desconto_percentual"`
	ValidUntil time.Time       `gorm:"not null"                        json:"validade"`
}

type CartItem struct {
	ID        uint    `gorm:"primaryKey"                                      json:"id"`
	UserID    uint    `gorm:"uniqueIndex:idx_cart_user_product;not null"      json:"user_id"`
	ProductID uint    `gorm:"uniqueIndex:idx_cart_user_product;not null"      json:"produto_id"`
	Quantity  int     `gorm:"not null;check:quantity>0"                       json:"quantidade"`
	Product   Product `gorm:"foreignKey:ProductID"                            json:"-"`
}

type Order struct {
	ID        uint            `gorm:"primaryKey"                  json:"id"`
	UserID    uint            `gorm:"index;not null"              json:"user_id"`
	Status    string          `gorm:"not null;default:pending"    json:"status"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	CreatedAt time.Time       `                                   json:"data"`
}

// OrderItem keeps the price and product details as they were when the order was placed.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey"                  json:"id"`
	OrderID      uint            `gorm:"index;not null"              json:"order_id"`
	ProductID    uint            `gorm:"not null"                    json:"produto_id"`
	Quantity     int             `gorm:"not null;check:quantity>0"   json:"quantidade"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"preco"`
	ProductName  string          `                                   json:"nome"`
	ProductImage string          `                                   json:"imagem"`
}

func All() []any {
	return []any{&User{}, &Session{}, &Product{}, &Promotion{}, &CartItem{}, &Order{}, &OrderItem{}}
}
