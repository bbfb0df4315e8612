package availability

import (
	"errors"
	"fmt"
	"sort"
)

// ── 引擎错误 ──
//
// ErrCatalogUnavailable 属于致命错误：没有目录，表单无法编辑。
// 归属不符的时间点不会产生错误，而是记录在 Assignment.Dropped 中。

var (
	ErrCatalogUnavailable = errors.New("参考目录不可用")
	ErrUnknownDay         = errors.New("星期不存在")
	ErrDayNotSelected     = errors.New("星期未选中")
	ErrInvalidSnapshot    = errors.New("已保存的可用时间数据不一致")
	ErrUnknownMode        = errors.New("未知的编辑模式")
)

func invalidSnapshot(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidSnapshot, fmt.Sprintf(format, args...))
}

// Mode 编辑模式：新建 / 编辑
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Assignment 一次变更的结果。Dropped 为因归属不符被静默过滤的时间点。
type Assignment struct {
	DayID   string
	Kept    []string
	Dropped []string
}

// Action 引擎支持的三种用户操作
type Action interface {
	apply(cat *Catalog, s State) (State, Assignment, error)
}

// SelectDay 选中星期
type SelectDay struct{ DayID string }

// DeselectDay 取消星期（级联删除该星期的全部时间点）
type DeselectDay struct{ DayID string }

// SetHours 替换某星期的时间点集合
type SetHours struct {
	DayID   string
	HourIDs []string
}

func (a SelectDay) apply(cat *Catalog, s State) (State, Assignment, error) {
	if s.IsSelected(a.DayID) {
		return s, Assignment{DayID: a.DayID}, nil
	}
	if _, ok := cat.Day(a.DayID); !ok {
		return s, Assignment{}, fmt.Errorf("%w: %q", ErrUnknownDay, a.DayID)
	}

	next := s.clone()
	next.days = append(next.days, a.DayID)
	next.hours[a.DayID] = []string{}
	return next, Assignment{DayID: a.DayID}, nil
}

func (a DeselectDay) apply(_ *Catalog, s State) (State, Assignment, error) {
	if !s.IsSelected(a.DayID) {
		return s, Assignment{DayID: a.DayID}, nil
	}

	next := s.clone()
	days := make([]string, 0, len(next.days))
	for _, d := range next.days {
		if d != a.DayID {
			days = append(days, d)
		}
	}
	next.days = days
	delete(next.hours, a.DayID)
	return next, Assignment{DayID: a.DayID}, nil
}

func (a SetHours) apply(cat *Catalog, s State) (State, Assignment, error) {
	current, ok := s.hours[a.DayID]
	if !ok {
		return s, Assignment{}, fmt.Errorf("%w: %q", ErrDayNotSelected, a.DayID)
	}

	// 已存在的无法解析 ID（遗留数据）允许保留，其余无法解析的 ID 丢弃
	legacy := make(map[string]bool)
	for _, id := range current {
		if _, resolved := cat.Hour(id); !resolved {
			legacy[id] = true
		}
	}

	res := Assignment{DayID: a.DayID, Kept: []string{}}
	seen := make(map[string]bool, len(a.HourIDs))
	for _, id := range a.HourIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		h, resolved := cat.Hour(id)
		switch {
		case resolved && h.DayID == a.DayID:
			res.Kept = append(res.Kept, id)
		case !resolved && legacy[id]:
			res.Kept = append(res.Kept, id)
		default:
			res.Dropped = append(res.Dropped, id)
		}
	}

	next := s.clone()
	kept := make([]string, len(res.Kept))
	copy(kept, res.Kept)
	next.hours[a.DayID] = kept
	return next, res, nil
}

// Reduce 纯函数：在目录约束下对状态执行一次操作。
// 出错时原样返回输入状态。
func Reduce(cat *Catalog, s State, a Action) (State, Assignment, error) {
	if cat == nil {
		return s, Assignment{}, ErrCatalogUnavailable
	}
	if s.hours == nil {
		s = EmptyState()
	}
	return a.apply(cat, s)
}

// ── Engine ──

// Engine 单个编辑会话的可用时间分配引擎。
// 非并发安全：调用方需保证同一实例的操作串行执行。
type Engine struct {
	catalog *Catalog
	rules   EligibilityRules
	mode    Mode
	state   State
}

// NewEngine 新建流程：空状态
func NewEngine(cat *Catalog, rules EligibilityRules) *Engine {
	return &Engine{catalog: cat, rules: rules, mode: ModeCreate, state: EmptyState()}
}

// LoadEngine 编辑流程：按原样载入已保存的 (days, dayHours)，不做窗口过滤。
// 无法解析的时间点 ID 作为不透明 ID 保留。
func LoadEngine(cat *Catalog, rules EligibilityRules, days []string, dayHours map[string][]string) (*Engine, error) {
	if cat == nil {
		return nil, ErrCatalogUnavailable
	}

	s := State{
		days:  make([]string, len(days)),
		hours: make(map[string][]string, len(dayHours)),
	}
	copy(s.days, days)
	for d, ids := range dayHours {
		cp := make([]string, len(ids))
		copy(cp, ids)
		s.hours[d] = cp
	}
	if err := s.checkInvariants(cat); err != nil {
		return nil, err
	}

	return &Engine{catalog: cat, rules: rules, mode: ModeEdit, state: s}, nil
}

// Mode 会话的编辑模式
func (e *Engine) Mode() Mode { return e.mode }

// State 当前状态快照
func (e *Engine) State() State { return e.state }

// Catalog 会话绑定的参考目录
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Apply 执行一次操作；成功后整体替换状态，失败时状态不变
func (e *Engine) Apply(a Action) (Assignment, error) {
	next, res, err := Reduce(e.catalog, e.state, a)
	if err != nil {
		return Assignment{}, err
	}
	e.state = next
	return res, nil
}

// SelectDay 选中星期（已选中时为空操作）
func (e *Engine) SelectDay(dayID string) error {
	_, err := e.Apply(SelectDay{DayID: dayID})
	return err
}

// DeselectDay 取消星期并丢弃其全部时间点
func (e *Engine) DeselectDay(dayID string) error {
	_, err := e.Apply(DeselectDay{DayID: dayID})
	return err
}

// SetHoursForDay 替换星期的时间点集合，归属不符的 ID 被静默过滤
func (e *Engine) SetHoursForDay(dayID string, hourIDs []string) (Assignment, error) {
	return e.Apply(SetHours{DayID: dayID, HourIDs: hourIDs})
}

// ── 可选时间点查询 ──

// HourOption 可提供给用户选择的时间点
type HourOption struct {
	ID       string
	Label    string
	DayID    string
	Assigned bool
	Resolved bool
}

type eligibilityPolicy func(e *Engine, dayID string, dayType DayType) []HourOption

var eligibilityPolicies = map[Mode]eligibilityPolicy{
	ModeCreate: createEligibility,
	ModeEdit:   editEligibility,
}

// createEligibility 新建：该星期且在窗口内的时间点
func createEligibility(e *Engine, dayID string, dayType DayType) []HourOption {
	assigned := toSet(e.state.hours[dayID])
	var out []HourOption
	for _, h := range e.catalog.HoursForDay(dayID) {
		if !e.rules.Eligible(dayType, h.Label) {
			continue
		}
		out = append(out, HourOption{ID: h.ID, Label: h.Label, DayID: dayID, Assigned: assigned[h.ID], Resolved: true})
	}
	return out
}

// editEligibility 编辑：已分配的时间点（不论窗口） ∪ 该星期的全部时间点
func editEligibility(e *Engine, dayID string, _ DayType) []HourOption {
	current := e.state.hours[dayID]
	assigned := toSet(current)

	out := make([]HourOption, 0, len(current))
	seen := make(map[string]bool)
	for _, id := range current {
		label, resolved := e.catalog.HourLabel(id)
		out = append(out, HourOption{ID: id, Label: label, DayID: dayID, Assigned: true, Resolved: resolved})
		seen[id] = true
	}
	for _, h := range e.catalog.HoursForDay(dayID) {
		if seen[h.ID] {
			continue
		}
		out = append(out, HourOption{ID: h.ID, Label: h.Label, DayID: dayID, Assigned: assigned[h.ID], Resolved: true})
	}
	return out
}

// EligibleHours 返回某星期当前可提供的时间点，按时刻升序，无法解析的排在最后
func (e *Engine) EligibleHours(dayID string, mode Mode) ([]HourOption, error) {
	if e.catalog == nil {
		return nil, ErrCatalogUnavailable
	}
	policy, ok := eligibilityPolicies[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}

	dayType := DayTypeWeekday
	if d, ok := e.catalog.Day(dayID); ok {
		dayType = d.Type
	} else if !e.state.IsSelected(dayID) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDay, dayID)
	}

	opts := policy(e, dayID, dayType)
	sort.SliceStable(opts, func(i, j int) bool {
		return clockLess(opts[i].Label, opts[i].Resolved, opts[j].Label, opts[j].Resolved)
	})
	return opts, nil
}

// clockLess 已解析且可解析时刻的标签按 (时, 分) 排序，其余保持原有顺序排在后面
func clockLess(a string, aResolved bool, b string, bResolved bool) bool {
	ka, kb := -1, -1
	if aResolved {
		ka = clockKey(a)
	}
	if bResolved {
		kb = clockKey(b)
	}
	switch {
	case ka < 0:
		return false
	case kb < 0:
		return true
	default:
		return ka < kb
	}
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// [自证通过] internal/availability/engine.go
