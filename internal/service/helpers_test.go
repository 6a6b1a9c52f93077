package service

import (
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/db/dbtest"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func nowFunc() time.Time { return fixedNow }

type publishedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	m, _ := event.(map[string]any)
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: m})
	return nil
}

func (p *recordingPublisher) last(t *testing.T) publishedEvent {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.events, "no events published")
	return p.events[len(p.events)-1]
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fakeIndexer struct {
	indexed map[uint]models.Product
	deleted []uint
	hits    []uint
	total   int64
	err     error
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{indexed: map[uint]models.Product{}}
}

func (f *fakeIndexer) IndexProduct(_ context.Context, p models.Product) error {
	if f.err != nil {
		return f.err
	}
	f.indexed[p.ID] = p
	return nil
}

func (f *fakeIndexer) DeleteProduct(_ context.Context, id uint) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndexer) Search(_ context.Context, _ string, _, _ int) (int64, []uint, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	return f.total, f.hits, nil
}

type fakeImages struct {
	saved []string
}

func (f *fakeImages) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Filename == "" {
		return "", errors.New("empty filename")
	}
	name := "1700000000000-" + fh.Filename
	f.saved = append(f.saved, name)
	return name, nil
}

type recordingObserver struct {
	totals []decimal.Decimal
}

func (o *recordingObserver) ObserveOrder(total decimal.Decimal) {
	o.totals = append(o.totals, total)
}

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return &repo.GormRepo{DB: dbtest.New(t)}
}

func createUser(t *testing.T, r *repo.GormRepo, email, role string) models.User {
	t.Helper()
	u := models.User{Name: "User " + email, Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, r.CreateUser(context.Background(), &u))
	return u
}

func createProduct(t *testing.T, r *repo.GormRepo, name, price string) models.Product {
	t.Helper()
	p := models.Product{Name: name, Description: name, Category: "Geral", Price: decimal.RequireFromString(price), Stock: 10, Image: name + ".png"}
	require.NoError(t, r.CreateProduct(context.Background(), &p))
	return p
}

func createPromotion(t *testing.T, r *repo.GormRepo, productID uint, discount int64, until string) {
	t.Helper()
	d, err := time.ParseInLocation(time.DateOnly, until, time.UTC)
	require.NoError(t, err)
	require.NoError(t, r.UpsertPromotion(context.Background(), &models.Promotion{
		ProductID:  productID,
		Discount:   decimal.NewFromInt(discount),
		ValidUntil: d,
	}))
}

func decEq(want string, got decimal.Decimal) bool {
	return decimal.RequireFromString(want).Equal(got)
}
