package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

// UpsertPromotion replaces the product's promotion if one already exists.
func (r *GormRepo) UpsertPromotion(ctx context.Context, promo *models.Promotion) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"discount", "valid_until"}),
	}).Create(promo).Error
}

func (r *GormRepo) GetPromotion(ctx context.Context, productID uint) (*models.Promotion, error) {
	var promo models.Promotion
	if err := r.DB.WithContext(ctx).Where("product_id = ?", productID).First(&promo).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}
