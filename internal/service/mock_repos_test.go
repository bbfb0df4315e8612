package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/Ali4681/TimeTable-sub000/internal/model"
	"github.com/Ali4681/TimeTable-sub000/pkg/redis"
	pkgerrors "github.com/Ali4681/TimeTable-sub000/pkg/errors"
)

// ── Mock CatalogRepository ──

type mockCatalogRepo struct {
	days  []model.Day
	hours []model.HourSlot
	err   error
	delay time.Duration
	calls int32
}

func newMockCatalogRepo() *mockCatalogRepo {
	weekend := "weekend"
	weekday := "weekday"
	m := &mockCatalogRepo{
		days: []model.Day{
			{DayID: "mon", Name: "Monday", DayType: &weekday, SortOrder: 1},
			{DayID: "tue", Name: "Tuesday", DayType: &weekday, SortOrder: 2},
			{DayID: "sat", Name: "Saturday", DayType: &weekend, SortOrder: 6},
		},
	}
	for _, d := range []string{"mon", "tue", "sat"} {
		for h := 7; h <= 21; h++ {
			m.hours = append(m.hours, model.HourSlot{
				HourSlotID: fmt.Sprintf("%s-%02d", d, h),
				Label:      fmt.Sprintf("%02d:00", h),
				DayID:      d,
			})
		}
	}
	return m
}

func (m *mockCatalogRepo) ListDays(ctx context.Context) ([]model.Day, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.days, nil
}

func (m *mockCatalogRepo) ListHourSlots(_ context.Context) ([]model.HourSlot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hours, nil
}

// ── Mock TeacherRepository ──

type mockTeacherRepo struct {
	mu        sync.Mutex
	teachers  map[string]*model.Teacher
	createErr error
	updateErr error
	seq       int
}

func newMockTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{teachers: make(map[string]*model.Teacher)}
}

func (m *mockTeacherRepo) Create(_ context.Context, teacher *model.Teacher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if teacher.TeacherID == "" {
		m.seq++
		teacher.TeacherID = fmt.Sprintf("00000000-0000-0000-0000-%012d", m.seq)
	}
	teacher.Version = 1
	cp := *teacher
	m.teachers[teacher.TeacherID] = &cp
	return nil
}

func (m *mockTeacherRepo) GetByID(_ context.Context, id string) (*model.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.teachers[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) List(_ context.Context, offset, limit int) ([]model.Teacher, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Teacher
	for _, t := range m.teachers {
		all = append(all, *t)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Teacher{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockTeacherRepo) Update(_ context.Context, teacher *model.Teacher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	existing, ok := m.teachers[teacher.TeacherID]
	if !ok || existing.Version != teacher.Version {
		return pkgerrors.ErrOptimisticLock
	}
	teacher.Version++
	teacher.CreatedAt = existing.CreatedAt
	cp := *teacher
	m.teachers[teacher.TeacherID] = &cp
	return nil
}

func (m *mockTeacherRepo) Delete(_ context.Context, id string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.teachers, id)
	return nil
}

// ── Mock CatalogCache ──

type mockCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	sets   int

	// 非 nil 时 GetBytes 读到数据后通知 getEntered，并阻塞到 getGate 关闭
	getEntered chan struct{}
	getGate    chan struct{}
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) GetBytes(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	getErr := m.getErr
	b, ok := m.data[key]
	entered, gate := m.getEntered, m.getGate
	m.mu.Unlock()

	if gate != nil {
		close(entered)
		<-gate
	}
	if getErr != nil {
		return nil, getErr
	}
	if !ok {
		return nil, redis.ErrCacheMiss
	}
	return b, nil
}

func (m *mockCache) SetBytes(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
