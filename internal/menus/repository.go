package menus

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/angelmondragon/kioskeats-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/kioskeats-backend/pkg/errors"
)

// Repository is the persistence surface for the menu library.
type Repository interface {
	List(ctx context.Context) ([]models.MenuConfig, error)
	Get(ctx context.Context, id string) (*models.MenuConfig, error)
	Create(ctx context.Context, cfg *models.MenuConfig) error
	Update(ctx context.Context, cfg *models.MenuConfig) error
	Delete(ctx context.Context, id string) error
}

type gormRepository struct {
	conn *gorm.DB
}

func NewRepository(conn *gorm.DB) (Repository, error) {
	if conn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "db connection is required")
	}
	return &gormRepository{conn: conn}, nil
}

func (r *gormRepository) List(ctx context.Context) ([]models.MenuConfig, error) {
	var configs []models.MenuConfig
	err := r.conn.WithContext(ctx).
		Order("last_updated DESC").
		Find(&configs).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing menus")
	}
	return configs, nil
}

func (r *gormRepository) Get(ctx context.Context, id string) (*models.MenuConfig, error) {
	var cfg models.MenuConfig
	err := r.conn.WithContext(ctx).First(&cfg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading menu")
	}
	return &cfg, nil
}

func (r *gormRepository) Create(ctx context.Context, cfg *models.MenuConfig) error {
	if err := r.conn.WithContext(ctx).Create(cfg).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating menu")
	}
	return nil
}

func (r *gormRepository) Update(ctx context.Context, cfg *models.MenuConfig) error {
	result := r.conn.WithContext(ctx).
		Model(&models.MenuConfig{}).
		Where("id = ?", cfg.ID).
		Select("name", "currency_symbol", "categories", "products", "last_updated").
		Updates(cfg)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "updating menu")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu not found")
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id string) error {
	result := r.conn.WithContext(ctx).Delete(&models.MenuConfig{}, "id = ?", id)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "deleting menu")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu not found")
	}
	return nil
}
