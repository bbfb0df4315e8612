package service

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Ali4681/TimeTable-sub000/config"
	"github.com/Ali4681/TimeTable-sub000/internal/availability"
	"github.com/Ali4681/TimeTable-sub000/internal/dto"
	"github.com/Ali4681/TimeTable-sub000/internal/model"
	"github.com/Ali4681/TimeTable-sub000/internal/repository"
	pkgerrors "github.com/Ali4681/TimeTable-sub000/pkg/errors"
)

// ── 可用时间编辑业务错误 ──

var (
	ErrDayNotFound     = availability.ErrUnknownDay
	ErrDayNotSelected  = availability.ErrDayNotSelected
	ErrInvalidSnapshot = availability.ErrInvalidSnapshot
)

// AvailabilityService 可用时间编辑会话业务接口
//
// 一个会话对应一次表单编辑：打开 → 选星期 / 设时间点 → 提交或放弃。
// 会话只在本进程内存中保存，空闲超过 session.idle_ttl 后被清理。
type AvailabilityService interface {
	OpenSession(ctx context.Context, req *dto.OpenSessionRequest, callerID string) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, sessionID, callerID string) (*dto.SessionResponse, error)
	SelectDay(ctx context.Context, sessionID string, req *dto.SelectDayRequest, callerID string) (*dto.SessionResponse, error)
	DeselectDay(ctx context.Context, sessionID, dayID, callerID string) (*dto.SessionResponse, error)
	SetHours(ctx context.Context, sessionID, dayID string, req *dto.SetHoursRequest, callerID string) (*dto.SetHoursResponse, error)
	EligibleHours(ctx context.Context, sessionID, dayID, callerID string) ([]dto.HourOptionResponse, error)
	Summary(ctx context.Context, sessionID, callerID string) (*dto.SummaryResponse, error)
	Payload(ctx context.Context, sessionID, callerID string) (*dto.PayloadResponse, error)
	Submit(ctx context.Context, sessionID string, req *dto.SubmitRequest, callerID string) (*dto.TeacherResponse, error)
	CloseSession(ctx context.Context, sessionID, callerID string) error
	// RunJanitor 阻塞执行过期会话清理，直到 ctx 取消
	RunJanitor(ctx context.Context)
}

type availabilityService struct {
	repo          *repository.Repository
	catalog       CatalogService
	rules         availability.EligibilityRules
	store         *sessionStore
	sweepInterval time.Duration
	logger        *zap.Logger
}

// NewAvailabilityService 创建 AvailabilityService 实例
func NewAvailabilityService(
	repo *repository.Repository,
	catalog CatalogService,
	rules availability.EligibilityRules,
	sessCfg *config.SessionConfig,
	logger *zap.Logger,
) AvailabilityService {
	return &availabilityService{
		repo:          repo,
		catalog:       catalog,
		rules:         rules,
		store:         newSessionStore(sessCfg.IdleTTL, sessCfg.MaxSessions, logger),
		sweepInterval: sessCfg.SweepInterval,
		logger:        logger,
	}
}

// RulesFromConfig 由配置构造可分配时间窗口
func RulesFromConfig(cfg *config.AvailabilityConfig) availability.EligibilityRules {
	return availability.EligibilityRules{
		Weekday: availability.Window{StartHour: cfg.WeekdayStartHour, EndHour: cfg.WeekdayEndHour},
		Weekend: availability.Window{StartHour: cfg.WeekendStartHour, EndHour: cfg.WeekendEndHour},
	}
}

// ────────────────────── OpenSession ──────────────────────

func (s *availabilityService) OpenSession(ctx context.Context, req *dto.OpenSessionRequest, callerID string) (*dto.SessionResponse, error) {
	cat, err := s.catalog.Current()
	if err != nil {
		return nil, err
	}

	sess := &editSession{ownerID: callerID}
	if req.TeacherID == "" {
		sess.engine = availability.NewEngine(cat, s.rules)
	} else {
		teacher, err := s.repo.Teacher.GetByID(ctx, req.TeacherID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTeacherNotFound
			}
			s.logger.Error("查询教师记录失败", zap.String("teacher_id", req.TeacherID), zap.Error(err))
			return nil, err
		}

		engine, err := availability.LoadEngine(cat, s.rules, teacher.Days, teacher.DayHours.Data())
		if err != nil {
			s.logger.Warn("教师可用时间数据不一致，拒绝载入",
				zap.String("teacher_id", teacher.TeacherID),
				zap.Error(err),
			)
			return nil, err
		}
		sess.engine = engine
		sess.teacherID = teacher.TeacherID
		sess.version = teacher.Version
	}

	if err := s.store.add(sess); err != nil {
		s.logger.Warn("编辑会话数量已达上限", zap.Int("sessions", s.store.len()))
		return nil, err
	}

	s.logger.Info("打开编辑会话",
		zap.String("session_id", sess.id),
		zap.String("mode", sess.engine.Mode().String()),
		zap.String("teacher_id", sess.teacherID),
		zap.String("caller", callerID),
	)
	return s.toSessionResponse(sess), nil
}

// ────────────────────── GetSession ──────────────────────

func (s *availabilityService) GetSession(_ context.Context, sessionID, callerID string) (*dto.SessionResponse, error) {
	var resp *dto.SessionResponse
	err := s.withSession(sessionID, callerID, func(sess *editSession) error {
		resp = s.toSessionResponse(sess)
		return nil
	})
	return resp, err
}

// ────────────────────── SelectDay / DeselectDay ──────────────────────

func (s *availabilityService) SelectDay(_ context.Context, sessionID string, req *dto.SelectDayRequest, callerID string) (*dto.SessionResponse, error) {
	var resp *dto.SessionResponse
	err := s.withSession(sessionID, callerID, func(sess *editSession) error {
		if err := sess.engine.SelectDay(req.DayID); err != nil {
			return err
		}
		resp = s.toSessionResponse(sess)
		return nil
	})
	return resp, err
}

func (s *availabilityService) DeselectDay(_ context.Context, sessionID, dayID, callerID string) (*dto.SessionResponse, error) {
	var resp *dto.SessionResponse
	err := s.withSession(sessionID, callerID, func(sess *editSession) error {
		if err := sess.engine.DeselectDay(dayID); err != nil {
			return err
		}
		resp = s.toSessionResponse(sess)
		return nil
	})
	return resp, err
}

// ────────────────────── SetHours ──────────────────────

func (s *availabilityService) SetHours(_ context.Context, sessionID, dayID string, req *dto.SetHoursRequest, callerID string) (*dto.SetHoursResponse, error) {
	var resp *dto.SetHoursResponse
	err := s.withSession(sessionID, callerID, func(sess *editSession) error {
		res, err := sess.engine.SetHoursForDay(dayID, req.HourIDs)
		if err != nil {
			return err
		}
		if len(res.Dropped) > 0 {
			s.logger.Debug("忽略不属于该星期的时间点",
				zap.String("session_id", sess.id),
				zap.String("day_id", dayID),
				zap.Strings("dropped", res.Dropped),
			)
		}

		dropped := res.Dropped
		if dropped == nil {
			dropped = []string{}
		}
		resp = &dto.SetHoursResponse{
			Session:        *s.toSessionResponse(sess),
			DroppedHourIDs: dropped,
		}
		return nil
	})
	return resp, err
}

// ────────────────────── EligibleHours ──────────────────────

func (s *availabilityService) EligibleHours(_ context.Context, sessionID, dayID, callerID string) ([]dto.HourOptionResponse, error) {
	var result []dto.HourOptionResponse
	err := s.withSession(sessionID, callerID, func(sess *editSession) error {
		opts, err := sess.engine.EligibleHours(dayID, sess.engine.Mode())
		if err != nil {
			return err
		}
		result = make([]dto.HourOptionResponse, 0, len(opts))
		for _, o := range opts {
			result = append(result, dto.HourOptionResponse{
				ID:       o.ID,
				Label:    o.Label,
				DayID:    o.DayID,
				Assigned: o.Assigned,
				Resolved: o.Resolved,
			})
		}
		return nil
	})
	return result, err
}

// ────────────────────── Summary / Payload ──────────────────────

// Summary 未选择任何星期时返回 nil
func (s *availabilityService) Summary(_ context.Context, sessionID, callerID string) (*dto.SummaryResponse, error) {
	var resp *dto.SummaryResponse
	err := s.withSession(sessionID, callerID, func(sess *editSession) error {
		resp = toSummaryResponse(availability.Summarize(sess.engine.Catalog(), sess.engine.State()))
		return nil
	})
	return resp, err
}

func (s *availabilityService) Payload(_ context.Context, sessionID, callerID string) (*dto.PayloadResponse, error) {
	var resp *dto.PayloadResponse
	err := s.withSession(sessionID, callerID, func(sess *editSession) error {
		sub := availability.NewSubmission("", false, sess.teacherID, availability.Normalize(sess.engine.State()))
		resp = toPayloadResponse(sub)
		return nil
	})
	return resp, err
}

// ────────────────────── Submit ──────────────────────

// Submit 规范化并持久化。失败时会话保持原样，成功后会话关闭。
func (s *availabilityService) Submit(ctx context.Context, sessionID string, req *dto.SubmitRequest, callerID string) (*dto.TeacherResponse, error) {
	var resp *dto.TeacherResponse
	err := s.withSession(sessionID, callerID, func(sess *editSession) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		sub := availability.NewSubmission(req.Name, req.CategoryFlag, sess.teacherID, availability.Normalize(sess.engine.State()))
		teacher := &model.Teacher{
			Name:         sub.Name,
			CategoryFlag: sub.CategoryFlag,
			Days:         pq.StringArray(sub.Days),
			HourIDs:      pq.StringArray(sub.HourIDs),
			DayHours:     datatypes.NewJSONType(model.DayHours(sub.DayHours)),
		}
		teacher.UpdatedBy = &callerID

		if sub.ID == nil {
			teacher.CreatedBy = &callerID
			if err := s.repo.Teacher.Create(ctx, teacher); err != nil {
				s.logger.Error("创建教师记录失败", zap.String("session_id", sess.id), zap.Error(err))
				return err
			}
		} else {
			teacher.TeacherID = *sub.ID
			teacher.Version = sess.version
			if err := s.repo.Teacher.Update(ctx, teacher); err != nil {
				if errors.Is(err, pkgerrors.ErrOptimisticLock) {
					s.logger.Warn("教师记录版本冲突",
						zap.String("teacher_id", teacher.TeacherID),
						zap.Int("version", sess.version),
					)
					return err
				}
				s.logger.Error("更新教师记录失败", zap.String("teacher_id", teacher.TeacherID), zap.Error(err))
				return err
			}
			// 回读以获得完整审计字段
			if fresh, err := s.repo.Teacher.GetByID(ctx, teacher.TeacherID); err == nil {
				teacher = fresh
			}
		}

		s.store.remove(sess.id)
		s.logger.Info("提交可用时间",
			zap.String("session_id", sess.id),
			zap.String("teacher_id", teacher.TeacherID),
			zap.Int("days", len(sub.Days)),
			zap.Int("hours", len(sub.HourIDs)),
		)
		resp = toTeacherResponse(teacher)
		return nil
	})
	return resp, err
}

// ────────────────────── CloseSession ──────────────────────

func (s *availabilityService) CloseSession(_ context.Context, sessionID, callerID string) error {
	if _, err := s.store.get(sessionID, callerID); err != nil {
		return err
	}
	s.store.remove(sessionID)
	return nil
}

func (s *availabilityService) RunJanitor(ctx context.Context) {
	s.store.run(ctx, s.sweepInterval)
}

// ── 内部辅助方法 ──

func (s *availabilityService) withSession(sessionID, callerID string, fn func(sess *editSession) error) error {
	sess, err := s.store.get(sessionID, callerID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess)
}

// toSessionResponse 调用方需持有 sess.mu
func (s *availabilityService) toSessionResponse(sess *editSession) *dto.SessionResponse {
	state := sess.engine.State()
	resp := &dto.SessionResponse{
		ID:           sess.id,
		Mode:         sess.engine.Mode().String(),
		SelectedDays: state.SelectedDays(),
		DayHours:     state.DayHours(),
		Summary:      toSummaryResponse(availability.Summarize(sess.engine.Catalog(), state)),
		ExpiresAt:    s.store.expiresAt(sess).Format(time.RFC3339),
	}
	if sess.teacherID != "" {
		id := sess.teacherID
		resp.TeacherID = &id
	}
	return resp
}

func toSummaryResponse(sum *availability.Summary) *dto.SummaryResponse {
	if sum == nil {
		return nil
	}
	resp := &dto.SummaryResponse{
		Days: make([]dto.DaySummaryResponse, 0, len(sum.Days)),
		Totals: dto.SummaryTotals{
			DayCount:   sum.Totals.DayCount,
			TotalHours: sum.Totals.TotalHours,
		},
	}
	for _, d := range sum.Days {
		resp.Days = append(resp.Days, dto.DaySummaryResponse{
			DayID:         d.DayID,
			DayLabel:      d.DayLabel,
			HourCount:     d.HourCount,
			TimeLabels:    d.TimeLabels,
			OverflowCount: d.OverflowCount,
		})
	}
	return resp
}

func toPayloadResponse(sub availability.Submission) *dto.PayloadResponse {
	return &dto.PayloadResponse{
		ID:           sub.ID,
		Name:         sub.Name,
		CategoryFlag: sub.CategoryFlag,
		HourIDs:      sub.HourIDs,
		Days:         sub.Days,
		DayHours:     sub.DayHours,
	}
}

// [自证通过] internal/service/availability_service.go
