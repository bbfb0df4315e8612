package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/Ali4681/TimeTable-sub000/internal/dto"
	"github.com/Ali4681/TimeTable-sub000/internal/service"
	pkgerrors "github.com/Ali4681/TimeTable-sub000/pkg/errors"
	"github.com/Ali4681/TimeTable-sub000/pkg/response"
)

// AvailabilityHandler 可用时间编辑会话 HTTP 处理器
type AvailabilityHandler struct {
	availabilitySvc service.AvailabilityService
}

// NewAvailabilityHandler 创建 AvailabilityHandler
func NewAvailabilityHandler(availabilitySvc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilitySvc: availabilitySvc}
}

// OpenSession 打开编辑会话；body 可为空（新建）
// POST /api/v1/availability/sessions
func (h *AvailabilityHandler) OpenSession(c *gin.Context) {
	var req dto.OpenSessionRequest
	// 空 body（含 chunked 空请求）视为新建
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sess, err := h.availabilitySvc.OpenSession(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.Created(c, sess)
}

// GetSession 获取会话当前状态
// GET /api/v1/availability/sessions/:id
func (h *AvailabilityHandler) GetSession(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sess, err := h.availabilitySvc.GetSession(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, sess)
}

// SelectDay 选中星期
// POST /api/v1/availability/sessions/:id/days
func (h *AvailabilityHandler) SelectDay(c *gin.Context) {
	var req dto.SelectDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sess, err := h.availabilitySvc.SelectDay(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, sess)
}

// DeselectDay 取消星期（同时清除该星期的时间点）
// DELETE /api/v1/availability/sessions/:id/days/:day_id
func (h *AvailabilityHandler) DeselectDay(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sess, err := h.availabilitySvc.DeselectDay(c.Request.Context(), c.Param("id"), c.Param("day_id"), callerID)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, sess)
}

// SetHours 替换某星期的时间点
// PUT /api/v1/availability/sessions/:id/days/:day_id/hours
func (h *AvailabilityHandler) SetHours(c *gin.Context) {
	var req dto.SetHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.availabilitySvc.SetHours(c.Request.Context(), c.Param("id"), c.Param("day_id"), &req, callerID)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, result)
}

// EligibleHours 获取某星期可选的时间点
// GET /api/v1/availability/sessions/:id/days/:day_id/eligible-hours
func (h *AvailabilityHandler) EligibleHours(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	opts, err := h.availabilitySvc.EligibleHours(c.Request.Context(), c.Param("id"), c.Param("day_id"), callerID)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, gin.H{"list": opts})
}

// GetSummary 获取摘要；未选择任何星期时 data 为 null
// GET /api/v1/availability/sessions/:id/summary
func (h *AvailabilityHandler) GetSummary(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	summary, err := h.availabilitySvc.Summary(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, summary)
}

// GetPayload 预览提交载荷
// GET /api/v1/availability/sessions/:id/payload
func (h *AvailabilityHandler) GetPayload(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	payload, err := h.availabilitySvc.Payload(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, payload)
}

// Submit 提交并关闭会话
// POST /api/v1/availability/sessions/:id/submit
func (h *AvailabilityHandler) Submit(c *gin.Context) {
	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	teacher, err := h.availabilitySvc.Submit(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, teacher)
}

// CloseSession 放弃编辑
// DELETE /api/v1/availability/sessions/:id
func (h *AvailabilityHandler) CloseSession(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.availabilitySvc.CloseSession(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *AvailabilityHandler) handleAvailabilityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCatalogPending):
		response.ServiceUnavailable(c, 20001, "参考目录加载中，请稍后重试")
	case errors.Is(err, service.ErrCatalogUnavailable):
		response.ServiceUnavailable(c, 20002, "参考目录不可用")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 21001, "编辑会话不存在或已过期")
	case errors.Is(err, service.ErrSessionNotOwner):
		response.Forbidden(c, 21002, "无权操作他人的编辑会话")
	case errors.Is(err, service.ErrTooManySessions):
		response.TooManyRequests(c, 21003, "进行中的编辑会话过多，请稍后重试")
	case errors.Is(err, service.ErrDayNotFound):
		response.BadRequest(c, 21004, "星期不存在")
	case errors.Is(err, service.ErrDayNotSelected):
		response.BadRequest(c, 21005, "请先选择该星期")
	case errors.Is(err, service.ErrInvalidSnapshot):
		response.UnprocessableEntity(c, 21006, "已保存的可用时间数据不一致，无法编辑")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 21007, "记录已被其他操作修改，请重新打开编辑会话")
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 22001, "教师记录不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/availability_handler.go
