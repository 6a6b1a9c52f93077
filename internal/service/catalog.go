package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

// AllCategories is the filter value the storefront sends for "no filter".
const AllCategories = "todas"

type CatalogService struct {
	Repo     *repo.GormRepo
	Searcher ProductSearcher
	Now      func() time.Time
}

func (s *CatalogService) ListProducts(ctx context.Context, category string) ([]transport.Product, error) {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, AllCategories) {
		category = ""
	}

	items, err := s.Repo.ListProducts(ctx, category)
	if err != nil {
		return nil, storeErr(err, "list products")
	}
	return transport.ProductViews(items, clock(s.Now)), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (transport.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return transport.Product{}, storeErr(err, "product")
	}
	return transport.ProductView(*p, clock(s.Now)), nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]transport.Category, error) {
	names, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, storeErr(err, "list categories")
	}
	out := make([]transport.Category, 0, len(names))
	for _, n := range names {
		out = append(out, transport.Category{Category: n})
	}
	return out, nil
}

// Search goes to the search index when one is configured and falls back to the
// database if the index is missing or failing.
func (s *CatalogService) Search(ctx context.Context, query string, page, size int) (*transport.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: q is required", ErrValidation)
	}
	page, size, from := util.Calculate(page, size)
	now := clock(s.Now)

	if s.Searcher != nil {
		total, ids, err := s.Searcher.Search(ctx, query, from, size)
		if err == nil {
			items, err := s.Repo.GetProductsByIDs(ctx, ids)
			if err != nil {
				return nil, storeErr(err, "load search hits")
			}
			return &transport.SearchResponse{Total: total, Page: page, Size: size, Products: transport.ProductViews(items, now)}, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to database", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, query, from, size)
	if err != nil {
		return nil, storeErr(err, "search products")
	}
	return &transport.SearchResponse{Total: total, Page: page, Size: size, Products: transport.ProductViews(items, now)}, nil
}
