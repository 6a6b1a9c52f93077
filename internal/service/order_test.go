package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
)

func newTestOrderService(t *testing.T) (*OrderService, *recordingPublisher, *recordingObserver) {
	t.Helper()
	pub := &recordingPublisher{}
	obs := &recordingObserver{}
	return &OrderService{Repo: newTestRepo(t), Publisher: pub, Metrics: obs, Now: nowFunc}, pub, obs
}

func TestOrderService_PlaceOrder(t *testing.T) {
	svc, pub, obs := newTestOrderService(t)
	ctx := context.Background()
	r := svc.Repo

	u := createUser(t, r, "cliente@example.com", models.RoleCustomer)
	a := createProduct(t, r, "Caneca", "10.00")
	b := createProduct(t, r, "Chaveiro", "5.00")
	createPromotion(t, r, b.ID, 20, "2025-12-31")

	require.NoError(t, r.AddToCart(ctx, &models.CartItem{UserID: u.ID, ProductID: a.ID, Quantity: 2}))
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{UserID: u.ID, ProductID: b.ID, Quantity: 1}))

	order, err := svc.PlaceOrder(ctx, u.ID)
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, decEq("24", order.Total), "total = %s", order.Total)

	items, err := svc.ListItems(ctx, u.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Caneca", items[0].ProductName)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, decEq("10", items[0].UnitPrice))
	assert.Equal(t, "Chaveiro", items[1].ProductName)
	assert.True(t, decEq("4", items[1].UnitPrice))
	assert.Equal(t, "Chaveiro.png", items[1].ProductImage)

	cart, err := r.ListCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	ev := pub.last(t)
	assert.Equal(t, mykafka.TopicOrder, ev.Topic)
	assert.Equal(t, "order_placed", ev.Event["type"])
	require.Len(t, obs.totals, 1)
	assert.True(t, decEq("24", obs.totals[0]))

	orders, err := svc.ListOrders(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestOrderService_PlaceOrder_EmptyCart(t *testing.T) {
	svc, pub, obs := newTestOrderService(t)
	ctx := context.Background()
	u := createUser(t, svc.Repo, "vazio@example.com", models.RoleCustomer)

	_, err := svc.PlaceOrder(ctx, u.ID)
	assert.ErrorIs(t, err, ErrEmptyCart)

	orders, err := svc.ListOrders(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Zero(t, pub.count())
	assert.Empty(t, obs.totals)
}

func TestOrderService_PlaceOrder_ExpiredPromotionIgnored(t *testing.T) {
	svc, _, _ := newTestOrderService(t)
	ctx := context.Background()
	r := svc.Repo

	u := createUser(t, r, "c@example.com", models.RoleCustomer)
	p := createProduct(t, r, "Lapis", "2.50")
	createPromotion(t, r, p.ID, 50, "2025-03-09")
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 4}))

	order, err := svc.PlaceOrder(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, decEq("10", order.Total), "total = %s", order.Total)
}

func TestOrderService_ItemsKeepPriceAtPurchase(t *testing.T) {
	svc, _, _ := newTestOrderService(t)
	ctx := context.Background()
	r := svc.Repo

	u := createUser(t, r, "c@example.com", models.RoleCustomer)
	p := createProduct(t, r, "Livro", "30.00")
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 1}))

	order, err := svc.PlaceOrder(ctx, u.ID)
	require.NoError(t, err)

	_, err = r.UpdateProduct(ctx, p.ID, map[string]any{"price": decimal.NewFromInt(99), "name": "Livro Novo"})
	require.NoError(t, err)
	createPromotion(t, r, p.ID, 50, "2030-01-01")

	items, err := svc.ListItems(ctx, u.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, decEq("30", items[0].UnitPrice))
	assert.Equal(t, "Livro", items[0].ProductName)

	got, err := r.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, decEq("30", got.Total))
}

func TestOrderService_PlaceOrder_RollsBackOnItemFailure(t *testing.T) {
	svc, pub, _ := newTestOrderService(t)
	ctx := context.Background()
	r := svc.Repo

	u := createUser(t, r, "c@example.com", models.RoleCustomer)
	p := createProduct(t, r, "Caderno", "12.00")
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 1}))

	require.NoError(t, r.DB.Callback().Create().Before("gorm:create").Register("test:fail_order_items", func(d *gorm.DB) {
		if d.Statement.Table == "order_items" {
			_ = d.AddError(errors.New("disk full"))
		}
	}))

	_, err := svc.PlaceOrder(ctx, u.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)

	orders, err := svc.ListOrders(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	cart, err := r.ListCart(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 1, cart[0].Quantity)
	assert.Zero(t, pub.count())
}

func TestOrderService_ListItems_Ownership(t *testing.T) {
	svc, _, _ := newTestOrderService(t)
	ctx := context.Background()
	r := svc.Repo

	alice := createUser(t, r, "alice@example.com", models.RoleCustomer)
	bob := createUser(t, r, "bob@example.com", models.RoleCustomer)
	p := createProduct(t, r, "Cola", "3.00")
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{UserID: alice.ID, ProductID: p.ID, Quantity: 1}))

	order, err := svc.PlaceOrder(ctx, alice.ID)
	require.NoError(t, err)

	_, err = svc.ListItems(ctx, bob.ID, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ListItems(ctx, alice.ID, order.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderService_PublishFailureDoesNotFailOrder(t *testing.T) {
	svc, pub, _ := newTestOrderService(t)
	pub.err = errors.New("broker down")
	ctx := context.Background()
	r := svc.Repo

	u := createUser(t, r, "c@example.com", models.RoleCustomer)
	p := createProduct(t, r, "Borracha", "1.00")
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 3}))

	order, err := svc.PlaceOrder(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, decEq("3", order.Total))
}
