package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db/dbtest"
	"github.com/Skotchmaster/storefront/internal/models"
)

func newRepo(t *testing.T) *GormRepo {
	t.Helper()
	return &GormRepo{DB: dbtest.New(t)}
}

func seedProduct(t *testing.T, r *GormRepo, name, category, price string) models.Product {
	t.Helper()
	p := models.Product{Name: name, Description: name + " description", Category: category, Price: decimal.RequireFromString(price), Stock: 5}
	require.NoError(t, r.CreateProduct(context.Background(), &p))
	return p
}

func seedUser(t *testing.T, r *GormRepo, email string) models.User {
	t.Helper()
	u := models.User{Name: "User " + email, Email: email, PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, r.CreateUser(context.Background(), &u))
	return u
}

func TestAddToCart_IncrementsExistingRow(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "a@example.com")
	p := seedProduct(t, r, "Mouse", "Periféricos", "10")

	first := models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 2}
	require.NoError(t, r.AddToCart(ctx, &first))
	second := models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 3}
	require.NoError(t, r.AddToCart(ctx, &second))

	items, err := r.ListCart(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Mouse", items[0].Product.Name)
}

func TestCartOwnership(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	owner := seedUser(t, r, "owner@example.com")
	other := seedUser(t, r, "other@example.com")
	p := seedProduct(t, r, "Teclado", "Periféricos", "50")

	item := models.CartItem{UserID: owner.ID, ProductID: p.ID, Quantity: 1}
	require.NoError(t, r.AddToCart(ctx, &item))

	assert.ErrorIs(t, r.UpdateCartQuantity(ctx, other.ID, item.ID, 4), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.DeleteCartItem(ctx, other.ID, item.ID), gorm.ErrRecordNotFound)

	require.NoError(t, r.UpdateCartQuantity(ctx, owner.ID, item.ID, 4))
	items, err := r.ListCart(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)

	require.NoError(t, r.DeleteCartItem(ctx, owner.ID, item.ID))
	items, err = r.ListCart(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpsertPromotion_ReplacesExisting(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "Monitor", "Monitores", "900")

	until := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, r.UpsertPromotion(ctx, &models.Promotion{ProductID: p.ID, Discount: decimal.NewFromInt(10), ValidUntil: until}))
	require.NoError(t, r.UpsertPromotion(ctx, &models.Promotion{ProductID: p.ID, Discount: decimal.NewFromInt(25), ValidUntil: until.AddDate(0, 1, 0)}))

	var count int64
	require.NoError(t, r.DB.Model(&models.Promotion{}).Where("product_id = ?", p.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Promotion)
	assert.True(t, decimal.NewFromInt(25).Equal(got.Promotion.Discount))
	assert.Equal(t, "2030-02-01", got.Promotion.ValidUntil.UTC().Format(time.DateOnly))
}

func TestDeleteProduct_RemovesPromotionAndCartRows(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "a@example.com")
	p := seedProduct(t, r, "Cadeira", "Móveis", "300")
	keep := seedProduct(t, r, "Mesa", "Móveis", "500")

	require.NoError(t, r.UpsertPromotion(ctx, &models.Promotion{ProductID: p.ID, Discount: decimal.NewFromInt(5), ValidUntil: time.Now().AddDate(0, 0, 5)}))
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 1}))
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{UserID: u.ID, ProductID: keep.ID, Quantity: 1}))

	require.NoError(t, r.DeleteProduct(ctx, p.ID))

	_, err := r.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = r.GetPromotion(ctx, p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	items, err := r.ListCart(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID, items[0].ProductID)

	assert.ErrorIs(t, r.DeleteProduct(ctx, p.ID), gorm.ErrRecordNotFound)
}

func TestListProductsAndCategories(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	seedProduct(t, r, "Notebook", "Informática", "3500")
	seedProduct(t, r, "Mouse", "Periféricos", "80")
	seedProduct(t, r, "Teclado", "Periféricos", "150")
	seedProduct(t, r, "Sem categoria", "", "1")

	all, err := r.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	peripherals, err := r.ListProducts(ctx, "Periféricos")
	require.NoError(t, err)
	require.Len(t, peripherals, 2)
	assert.Equal(t, "Mouse", peripherals[0].Name)

	cats, err := r.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Informática", "Periféricos"}, cats)

	newest, err := r.ListProductsNewest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sem categoria", newest[0].Name)
}

func TestGetProductsByIDs_KeepsOrder(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	a := seedProduct(t, r, "A", "x", "1")
	b := seedProduct(t, r, "B", "x", "2")

	got, err := r.GetProductsByIDs(ctx, []uint{b.ID, 9999, a.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Name)
	assert.Equal(t, "A", got[1].Name)
}

func TestSearchProducts(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	seedProduct(t, r, "Mouse Gamer", "Periféricos", "80")
	seedProduct(t, r, "Mousepad", "Periféricos", "20")
	seedProduct(t, r, "Monitor", "Monitores", "900")
	seedProduct(t, r, "100% algodão", "Roupas", "30")

	total, items, err := r.SearchProducts(ctx, "MOUSE", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	total, items, err = r.SearchProducts(ctx, "mouse", 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Mousepad", items[0].Name)

	total, _, err = r.SearchProducts(ctx, "%", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "a@example.com")

	boom := errors.New("boom")
	err := r.WithTx(ctx, func(tx *GormRepo) error {
		if err := tx.CreateOrder(ctx, &models.Order{UserID: u.ID, Status: models.OrderStatusPending, Total: decimal.NewFromInt(1)}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	orders, err := r.ListOrders(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrdersQueries(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	alice := seedUser(t, r, "alice@example.com")
	bob := seedUser(t, r, "bob@example.com")

	order := models.Order{UserID: alice.ID, Status: models.OrderStatusPending, Total: decimal.RequireFromString("24")}
	require.NoError(t, r.CreateOrder(ctx, &order))
	require.NoError(t, r.CreateOrderItems(ctx, []models.OrderItem{
		{OrderID: order.ID, ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(10), ProductName: "A"},
		{OrderID: order.ID, ProductID: 2, Quantity: 1, UnitPrice: decimal.NewFromInt(4), ProductName: "B"},
	}))

	_, err := r.GetUserOrder(ctx, bob.ID, order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	items, err := r.ListOrderItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, decimal.NewFromInt(10).Equal(items[0].UnitPrice))

	all, err := r.ListAllOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "alice@example.com", all[0].CustomerEmail)
	assert.Equal(t, alice.Name, all[0].CustomerName)
	assert.True(t, decimal.NewFromInt(24).Equal(all[0].Total))

	require.NoError(t, r.UpdateOrderStatus(ctx, order.ID, models.OrderStatusShipped))
	got, err := r.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, got.Status)

	assert.ErrorIs(t, r.UpdateOrderStatus(ctx, 9999, models.OrderStatusShipped), gorm.ErrRecordNotFound)
}
