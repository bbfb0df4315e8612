package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/Ali4681/TimeTable-sub000/config"
	"github.com/Ali4681/TimeTable-sub000/internal/availability"
	"github.com/Ali4681/TimeTable-sub000/internal/dto"
	"github.com/Ali4681/TimeTable-sub000/internal/model"
	"github.com/Ali4681/TimeTable-sub000/internal/repository"
	pkgerrors "github.com/Ali4681/TimeTable-sub000/pkg/errors"
)

const testCaller = "staff-001"

// ── 测试辅助 ──

func setupTestAvailabilityService(t *testing.T, maxSessions int) (*availabilityService, *mockTeacherRepo) {
	t.Helper()
	teacherRepo := newMockTeacherRepo()
	repo := &repository.Repository{
		Catalog: newMockCatalogRepo(),
		Teacher: teacherRepo,
	}
	logger := zap.NewNop()

	catalog := NewCatalogService(repo, nil, time.Minute, time.Second, logger)
	catalog.Start(context.Background())
	if st := waitCatalogSettled(t, catalog); st != CatalogReady {
		t.Fatalf("目录未就绪: %s", st)
	}

	sessCfg := &config.SessionConfig{IdleTTL: time.Minute, MaxSessions: maxSessions, SweepInterval: time.Second}
	svc := NewAvailabilityService(repo, catalog, availability.DefaultRules(), sessCfg, logger).(*availabilityService)
	return svc, teacherRepo
}

func openCreateSession(t *testing.T, svc AvailabilityService) string {
	t.Helper()
	resp, err := svc.OpenSession(context.Background(), &dto.OpenSessionRequest{}, testCaller)
	if err != nil {
		t.Fatalf("OpenSession 应成功: %v", err)
	}
	return resp.ID
}

func seedTeacher(repo *mockTeacherRepo, id string, days []string, dayHours model.DayHours) {
	var hourIDs []string
	for _, d := range days {
		hourIDs = append(hourIDs, dayHours[d]...)
	}
	repo.teachers[id] = &model.Teacher{
		TeacherID: id,
		Name:      "李老师",
		Days:      days,
		HourIDs:   hourIDs,
		DayHours:  datatypes.NewJSONType(dayHours),
		VersionedModel: model.VersionedModel{
			Version: 3,
		},
	}
}

// ── OpenSession 测试 ──

func TestAvailabilityService_OpenSession_Create(t *testing.T) {
	svc, _ := setupTestAvailabilityService(t, 10)

	resp, err := svc.OpenSession(context.Background(), &dto.OpenSessionRequest{}, testCaller)
	if err != nil {
		t.Fatalf("OpenSession 应成功: %v", err)
	}
	if resp.Mode != "create" {
		t.Errorf("期望 Mode=create，实际=%s", resp.Mode)
	}
	if resp.TeacherID != nil {
		t.Error("新建会话不应有 teacher_id")
	}
	if len(resp.SelectedDays) != 0 || resp.Summary != nil {
		t.Error("新建会话应为空状态且无摘要")
	}
}

func TestAvailabilityService_OpenSession_Edit(t *testing.T) {
	svc, teacherRepo := setupTestAvailabilityService(t, 10)
	seedTeacher(teacherRepo, "t-1", []string{"sat"}, model.DayHours{"sat": {"sat-07", "sat-10"}})

	resp, err := svc.OpenSession(context.Background(), &dto.OpenSessionRequest{TeacherID: "t-1"}, testCaller)
	if err != nil {
		t.Fatalf("OpenSession 应成功: %v", err)
	}
	if resp.Mode != "edit" {
		t.Errorf("期望 Mode=edit，实际=%s", resp.Mode)
	}
	// 载入时不做窗口过滤：sat-07 在周末窗口外但必须保留
	if got := resp.DayHours["sat"]; len(got) != 2 {
		t.Errorf("期望保留2个时间点，实际=%v", got)
	}
}

func TestAvailabilityService_OpenSession_TeacherNotFound(t *testing.T) {
	svc, _ := setupTestAvailabilityService(t, 10)

	_, err := svc.OpenSession(context.Background(), &dto.OpenSessionRequest{TeacherID: "missing"}, testCaller)
	if !errors.Is(err, ErrTeacherNotFound) {
		t.Errorf("期望 ErrTeacherNotFound，实际: %v", err)
	}
}

func TestAvailabilityService_OpenSession_InvalidSnapshot(t *testing.T) {
	svc, teacherRepo := setupTestAvailabilityService(t, 10)
	// mon-09 属于周一，却挂在周二下
	seedTeacher(teacherRepo, "t-bad", []string{"tue"}, model.DayHours{"tue": {"mon-09"}})

	_, err := svc.OpenSession(context.Background(), &dto.OpenSessionRequest{TeacherID: "t-bad"}, testCaller)
	if !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("期望 ErrInvalidSnapshot，实际: %v", err)
	}
}

func TestAvailabilityService_OpenSession_CatalogPending(t *testing.T) {
	repo := &repository.Repository{Catalog: newMockCatalogRepo(), Teacher: newMockTeacherRepo()}
	catalog := NewCatalogService(repo, nil, time.Minute, time.Second, zap.NewNop())
	sessCfg := &config.SessionConfig{IdleTTL: time.Minute, MaxSessions: 1}
	svc := NewAvailabilityService(repo, catalog, availability.DefaultRules(), sessCfg, zap.NewNop())

	_, err := svc.OpenSession(context.Background(), &dto.OpenSessionRequest{}, testCaller)
	if !errors.Is(err, ErrCatalogPending) {
		t.Errorf("期望 ErrCatalogPending，实际: %v", err)
	}
}

func TestAvailabilityService_OpenSession_TooMany(t *testing.T) {
	svc, _ := setupTestAvailabilityService(t, 1)
	openCreateSession(t, svc)

	_, err := svc.OpenSession(context.Background(), &dto.OpenSessionRequest{}, testCaller)
	if !errors.Is(err, ErrTooManySessions) {
		t.Errorf("期望 ErrTooManySessions，实际: %v", err)
	}
}

// ── 会话归属 / 过期测试 ──

func TestAvailabilityService_SessionOwnership(t *testing.T) {
	svc, _ := setupTestAvailabilityService(t, 10)
	id := openCreateSession(t, svc)

	_, err := svc.GetSession(context.Background(), id, "someone-else")
	if !errors.Is(err, ErrSessionNotOwner) {
		t.Errorf("期望 ErrSessionNotOwner，实际: %v", err)
	}
	_, err = svc.GetSession(context.Background(), "nope", testCaller)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("期望 ErrSessionNotFound，实际: %v", err)
	}
}

func TestAvailabilityService_SessionExpiry(t *testing.T) {
	svc, _ := setupTestAvailabilityService(t, 10)
	now := time.Now()
	svc.store.now = func() time.Time { return now }
	id := openCreateSession(t, svc)

	now = now.Add(2 * time.Minute)
	if n := svc.store.sweep(); n != 1 {
		t.Errorf("期望清理1个会话，实际=%d", n)
	}
	_, err := svc.GetSession(context.Background(), id, testCaller)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("期望 ErrSessionNotFound，实际: %v", err)
	}
}

// ── 选择 / 设置时间点测试 ──

func TestAvailabilityService_SelectAndSetHours(t *testing.T) {
	svc, _ := setupTestAvailabilityService(t, 10)
	ctx := context.Background()
	id := openCreateSession(t, svc)

	if _, err := svc.SelectDay(ctx, id, &dto.SelectDayRequest{DayID: "mon"}, testCaller); err != nil {
		t.Fatalf("SelectDay 应成功: %v", err)
	}

	resp, err := svc.SetHours(ctx, id, "mon", &dto.SetHoursRequest{HourIDs: []string{"mon-09", "tue-09", "mon-10", "mon-09"}}, testCaller)
	if err != nil {
		t.Fatalf("SetHours 应成功: %v", err)
	}
	if got := resp.Session.DayHours["mon"]; len(got) != 2 {
		t.Errorf("期望 mon 保留2个时间点，实际=%v", got)
	}
	if len(resp.DroppedHourIDs) != 1 || resp.DroppedHourIDs[0] != "tue-09" {
		t.Errorf("期望丢弃 tue-09，实际=%v", resp.DroppedHourIDs)
	}
	if resp.Session.Summary == nil || resp.Session.Summary.Totals.TotalHours != 2 {
		t.Error("摘要应统计2个时间点")
	}
}

func TestAvailabilityService_SelectDay_Unknown(t *testing.T) {
	svc, _ := setupTestAvailabilityService(t, 10)
	id := openCreateSession(t, svc)

	_, err := svc.SelectDay(context.Background(), id, &dto.SelectDayRequest{DayID: "funday"}, testCaller)
	if !errors.Is(err, ErrDayNotFound) {
		t.Errorf("期望 ErrDayNotFound，实际: %v", err)
	}
}

func TestAvailabilityService_SetHours_DayNotSelected(t *testing.T) {
	svc, _ := setupTestAvailabilityService(t, 10)
	id := openCreateSession(t, svc)

	_, err := svc.SetHours(context.Background(), id, "tue", &dto.SetHoursRequest{HourIDs: []string{"tue-09"}}, testCaller)
	if !errors.Is(err, ErrDayNotSelected) {
		t.Errorf("期望 ErrDayNotSelected，实际: %v", err)
	}
}

func TestAvailabilityService_DeselectDay_Cascades(t *testing.T) {
	svc, _ := setupTestAvailabilityService(t, 10)
	ctx := context.Background()
	id := openCreateSession(t, svc)

	svc.SelectDay(ctx, id, &dto.SelectDayRequest{DayID: "mon"}, testCaller)
	svc.SetHours(ctx, id, "mon", &dto.SetHoursRequest{HourIDs: []string{"mon-09"}}, testCaller)

	resp, err := svc.DeselectDay(ctx, id, "mon", testCaller)
	if err != nil {
		t.Fatalf("DeselectDay 应成功: %v", err)
	}
	if _, ok := resp.DayHours["mon"]; ok {
		t.Error("取消星期后不应保留其时间点")
	}
	if resp.Summary != nil {
		t.Error("无选中星期时摘要应为 nil")
	}
}

// ── EligibleHours 测试 ──

func TestAvailabilityService_EligibleHours_CreateWindow(t *testing.T) {
	svc, _ := setupTestAvailabilityService(t, 10)
	id := openCreateSession(t, svc)

	opts, err := svc.EligibleHours(context.Background(), id, "sat", testCaller)
	if err != nil {
		t.Fatalf("EligibleHours 应成功: %v", err)
	}
	// 周末窗口 9–17：09:00 … 17:00 共9个
	if len(opts) != 9 {
		t.Errorf("期望9个可选时间点，实际=%d", len(opts))
	}
	if opts[0].Label != "09:00" {
		t.Errorf("期望首个为 09:00，实际=%s", opts[0].Label)
	}
}

func TestAvailabilityService_EligibleHours_EditKeepsLegacy(t *testing.T) {
	svc, teacherRepo := setupTestAvailabilityService(t, 10)
	seedTeacher(teacherRepo, "t-1", []string{"sat"}, model.DayHours{"sat": {"sat-07"}})

	sess, err := svc.OpenSession(context.Background(), &dto.OpenSessionRequest{TeacherID: "t-1"}, testCaller)
	if err != nil {
		t.Fatalf("OpenSession 应成功: %v", err)
	}
	opts, err := svc.EligibleHours(context.Background(), sess.ID, "sat", testCaller)
	if err != nil {
		t.Fatalf("EligibleHours 应成功: %v", err)
	}
	if len(opts) == 0 || opts[0].ID != "sat-07" || !opts[0].Assigned {
		t.Errorf("编辑模式应保留窗口外的已分配时间点，实际=%+v", opts)
	}
}

// ── Payload / Submit 测试 ──

func TestAvailabilityService_Payload(t *testing.T) {
	svc, _ := setupTestAvailabilityService(t, 10)
	ctx := context.Background()
	id := openCreateSession(t, svc)
	svc.SelectDay(ctx, id, &dto.SelectDayRequest{DayID: "tue"}, testCaller)
	svc.SelectDay(ctx, id, &dto.SelectDayRequest{DayID: "mon"}, testCaller)
	svc.SetHours(ctx, id, "mon", &dto.SetHoursRequest{HourIDs: []string{"mon-08"}}, testCaller)
	svc.SetHours(ctx, id, "tue", &dto.SetHoursRequest{HourIDs: []string{"tue-12"}}, testCaller)

	p, err := svc.Payload(ctx, id, testCaller)
	if err != nil {
		t.Fatalf("Payload 应成功: %v", err)
	}
	if p.ID != nil {
		t.Error("新建会话的载荷不应带 _id")
	}
	if len(p.HourIDs) != 2 || p.HourIDs[0] != "tue-12" {
		t.Errorf("期望按选中顺序展平，实际=%v", p.HourIDs)
	}
}

func TestAvailabilityService_Submit_Create(t *testing.T) {
	svc, teacherRepo := setupTestAvailabilityService(t, 10)
	ctx := context.Background()
	id := openCreateSession(t, svc)
	svc.SelectDay(ctx, id, &dto.SelectDayRequest{DayID: "mon"}, testCaller)
	svc.SetHours(ctx, id, "mon", &dto.SetHoursRequest{HourIDs: []string{"mon-09"}}, testCaller)

	resp, err := svc.Submit(ctx, id, &dto.SubmitRequest{Name: "王老师", CategoryFlag: true}, testCaller)
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	if resp.ID == "" || resp.Name != "王老师" || !resp.CategoryFlag {
		t.Errorf("返回记录不正确: %+v", resp)
	}
	stored := teacherRepo.teachers[resp.ID]
	if stored == nil || len(stored.HourIDs) != 1 || *stored.CreatedBy != testCaller {
		t.Errorf("记录未正确写入: %+v", stored)
	}
	if _, err := svc.GetSession(ctx, id, testCaller); !errors.Is(err, ErrSessionNotFound) {
		t.Error("提交成功后会话应关闭")
	}
}

func TestAvailabilityService_Submit_Edit(t *testing.T) {
	svc, teacherRepo := setupTestAvailabilityService(t, 10)
	ctx := context.Background()
	seedTeacher(teacherRepo, "t-1", []string{"mon"}, model.DayHours{"mon": {"mon-09"}})

	sess, _ := svc.OpenSession(ctx, &dto.OpenSessionRequest{TeacherID: "t-1"}, testCaller)
	svc.SelectDay(ctx, sess.ID, &dto.SelectDayRequest{DayID: "tue"}, testCaller)
	svc.SetHours(ctx, sess.ID, "tue", &dto.SetHoursRequest{HourIDs: []string{"tue-10"}}, testCaller)

	resp, err := svc.Submit(ctx, sess.ID, &dto.SubmitRequest{Name: "李老师"}, testCaller)
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	if resp.ID != "t-1" || resp.Version != 4 {
		t.Errorf("期望更新 t-1 至 version=4，实际 id=%s version=%d", resp.ID, resp.Version)
	}
	if len(resp.HourIDs) != 2 {
		t.Errorf("期望2个时间点，实际=%v", resp.HourIDs)
	}
}

func TestAvailabilityService_Submit_ConflictKeepsSession(t *testing.T) {
	svc, teacherRepo := setupTestAvailabilityService(t, 10)
	ctx := context.Background()
	seedTeacher(teacherRepo, "t-1", []string{"mon"}, model.DayHours{"mon": {"mon-09"}})

	sess, _ := svc.OpenSession(ctx, &dto.OpenSessionRequest{TeacherID: "t-1"}, testCaller)
	teacherRepo.teachers["t-1"].Version = 9 // 其他会话已修改

	_, err := svc.Submit(ctx, sess.ID, &dto.SubmitRequest{Name: "李老师"}, testCaller)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Fatalf("期望 ErrOptimisticLock，实际: %v", err)
	}
	got, err := svc.GetSession(ctx, sess.ID, testCaller)
	if err != nil {
		t.Fatalf("冲突后会话应保留: %v", err)
	}
	if len(got.DayHours["mon"]) != 1 {
		t.Error("冲突后会话状态不应改变")
	}
}

func TestAvailabilityService_Submit_FailureKeepsSession(t *testing.T) {
	svc, teacherRepo := setupTestAvailabilityService(t, 10)
	ctx := context.Background()
	id := openCreateSession(t, svc)
	teacherRepo.createErr = errors.New("db down")

	if _, err := svc.Submit(ctx, id, &dto.SubmitRequest{Name: "王老师"}, testCaller); err == nil {
		t.Fatal("期望 Submit 失败")
	}
	if _, err := svc.GetSession(ctx, id, testCaller); err != nil {
		t.Errorf("持久化失败后会话应保留: %v", err)
	}
}

func TestAvailabilityService_Submit_CanceledContext(t *testing.T) {
	svc, teacherRepo := setupTestAvailabilityService(t, 10)
	id := openCreateSession(t, svc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Submit(ctx, id, &dto.SubmitRequest{Name: "王老师"}, testCaller); !errors.Is(err, context.Canceled) {
		t.Errorf("期望 context.Canceled，实际: %v", err)
	}
	if len(teacherRepo.teachers) != 0 {
		t.Error("已取消的提交不应写入记录")
	}
}

// ── CloseSession 测试 ──

func TestAvailabilityService_CloseSession(t *testing.T) {
	svc, _ := setupTestAvailabilityService(t, 10)
	id := openCreateSession(t, svc)

	if err := svc.CloseSession(context.Background(), id, "someone-else"); !errors.Is(err, ErrSessionNotOwner) {
		t.Errorf("期望 ErrSessionNotOwner，实际: %v", err)
	}
	if err := svc.CloseSession(context.Background(), id, testCaller); err != nil {
		t.Fatalf("CloseSession 应成功: %v", err)
	}
	if svc.store.len() != 0 {
		t.Error("关闭后会话表应为空")
	}
}
