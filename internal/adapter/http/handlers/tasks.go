package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"sailclub/internal/adapter/http/dto"
	"sailclub/internal/adapter/http/mapper"
	"sailclub/internal/adapter/http/middleware"
	"sailclub/internal/adapter/http/validation"
	"sailclub/internal/core/domain"
	"sailclub/internal/core/ports"
	"sailclub/pkg/apierrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskService ports.TaskService
}

func NewTaskHandler(taskService ports.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	lang := middleware.GetLang(c)
	actor, ok := currentMember(c)
	if !ok {
		return
	}

	var query ports.TaskQuery
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1970 || year > 9999 {
			c.JSON(
				http.StatusBadRequest,
				apierrors.CreateError(http.StatusBadRequest, apierrors.MsgInvalidYear, lang),
			)
			return
		}
		query.Year = &year
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), actor, query)
	if err != nil {
		zap.L().Error("failed to list tasks", zap.Error(err))
		c.JSON(
			http.StatusInternalServerError,
			apierrors.CreateError(http.StatusInternalServerError, apierrors.MsgFailListTask, lang),
		)
		return
	}

	c.JSON(http.StatusOK, mapper.ToTaskItems(tasks))
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, taskID, ok := memberAndTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), actor, taskID)
	if err != nil {
		respondError(c, err, apierrors.MsgFailGetTask, "failed to get task", taskID)
		return
	}

	c.JSON(http.StatusOK, mapper.ToTaskItem(task))
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	lang := middleware.GetLang(c)
	actor, ok := currentMember(c)
	if !ok {
		return
	}

	fields, ok := bindTaskFields(c, lang)
	if !ok {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), actor, fields)
	if err != nil {
		respondError(c, err, apierrors.MsgFailCreateTask, "failed to create task", 0)
		return
	}

	c.JSON(http.StatusCreated, mapper.ToTaskItem(task))
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	lang := middleware.GetLang(c)
	actor, taskID, ok := memberAndTaskID(c)
	if !ok {
		return
	}

	fields, ok := bindTaskFields(c, lang)
	if !ok {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), actor, taskID, fields)
	if err != nil {
		respondError(c, err, apierrors.MsgFailUpdateTask, "failed to update task", taskID)
		return
	}

	c.JSON(http.StatusOK, mapper.ToTaskItem(task))
}

func (h *TaskHandler) SignUpAsCaptain(c *gin.Context) {
	actor, taskID, ok := memberAndTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.SignUpAsCaptain(c.Request.Context(), actor, taskID)
	if err != nil {
		respondError(c, err, apierrors.MsgFailSignUp, "failed to sign up as captain", taskID)
		return
	}

	c.JSON(http.StatusOK, mapper.ToTaskItem(task))
}

func (h *TaskHandler) SignUpAsHelper(c *gin.Context) {
	actor, taskID, ok := memberAndTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.SignUpAsHelper(c.Request.Context(), actor, taskID)
	if err != nil {
		respondError(c, err, apierrors.MsgFailSignUp, "failed to sign up as helper", taskID)
		return
	}

	c.JSON(http.StatusOK, mapper.ToTaskItem(task))
}

func (h *TaskHandler) RemoveCaptain(c *gin.Context) {
	actor, taskID, ok := memberAndTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.RemoveCaptain(c.Request.Context(), actor, taskID); err != nil {
		respondError(c, err, apierrors.MsgFailRemoveSignup, "failed to remove captain", taskID)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) RemoveHelper(c *gin.Context) {
	lang := middleware.GetLang(c)
	actor, taskID, ok := memberAndTaskID(c)
	if !ok {
		return
	}

	memberID, err := strconv.ParseUint(c.Param("member_id"), 10, 64)
	if err != nil || memberID == 0 {
		c.JSON(
			http.StatusBadRequest,
			apierrors.CreateError(http.StatusBadRequest, apierrors.MsgInvalidMemberID, lang),
		)
		return
	}

	if err := h.taskService.RemoveHelper(c.Request.Context(), actor, taskID, memberID); err != nil {
		respondError(c, err, apierrors.MsgFailRemoveSignup, "failed to remove helper", taskID)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) MarkAsDone(c *gin.Context) {
	lang := middleware.GetLang(c)
	actor, taskID, ok := memberAndTaskID(c)
	if !ok {
		return
	}

	var req dto.MarkAsDoneRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(
				http.StatusBadRequest,
				apierrors.CreateError(http.StatusBadRequest, apierrors.MsgInvalidTaskPayload, lang),
			)
			return
		}
	}

	task, err := h.taskService.MarkAsDone(c.Request.Context(), actor, taskID, validation.OptionalText(req.Comment))
	if err != nil {
		respondError(c, err, apierrors.MsgFailMarkAsDone, "failed to mark task as done", taskID)
		return
	}

	c.JSON(http.StatusOK, mapper.ToTaskItem(task))
}

func (h *TaskHandler) ValidateTask(c *gin.Context) {
	lang := middleware.GetLang(c)
	actor, taskID, ok := memberAndTaskID(c)
	if !ok {
		return
	}

	var req dto.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			apierrors.CreateError(http.StatusBadRequest, apierrors.MsgInvalidTaskPayload, lang),
		)
		return
	}

	task, err := h.taskService.ValidateTask(c.Request.Context(), actor, taskID, validation.BuildValidationRequest(req))
	if err != nil {
		respondError(c, err, apierrors.MsgFailValidateTask, "failed to validate task", taskID)
		return
	}

	c.JSON(http.StatusOK, mapper.ToTaskItem(task))
}

func (h *TaskHandler) ListCategories(c *gin.Context) {
	lang := middleware.GetLang(c)

	categories, err := h.taskService.ListCategories(c.Request.Context())
	if err != nil {
		zap.L().Error("failed to list categories", zap.Error(err))
		c.JSON(
			http.StatusInternalServerError,
			apierrors.CreateError(http.StatusInternalServerError, apierrors.MsgFailListCategories, lang),
		)
		return
	}

	c.JSON(http.StatusOK, mapper.ToCategoryItems(categories))
}

func bindTaskFields(c *gin.Context, lang string) (domain.TaskFields, bool) {
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			apierrors.CreateError(http.StatusBadRequest, apierrors.MsgInvalidTaskPayload, lang),
		)
		return domain.TaskFields{}, false
	}

	fields, err := validation.BuildTaskFields(req)
	if err != nil {
		c.JSON(
			http.StatusBadRequest,
			apierrors.CreateError(http.StatusBadRequest, apierrors.MsgInvalidTaskPayload, lang),
		)
		return domain.TaskFields{}, false
	}
	return fields, true
}

func currentMember(c *gin.Context) (domain.Member, bool) {
	member, ok := middleware.CurrentMember(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated, apierrors.MsgUnauthenticated, "request without authenticated member", 0)
		return domain.Member{}, false
	}
	return member, true
}

func memberAndTaskID(c *gin.Context) (domain.Member, uint64, bool) {
	member, ok := currentMember(c)
	if !ok {
		return domain.Member{}, 0, false
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || taskID == 0 {
		c.JSON(
			http.StatusBadRequest,
			apierrors.CreateError(http.StatusBadRequest, apierrors.MsgInvalidTaskID, middleware.GetLang(c)),
		)
		return domain.Member{}, 0, false
	}
	return member, taskID, true
}

// respondError maps service errors onto HTTP statuses. Anything unrecognised is
// logged and answered with failMsg.
func respondError(c *gin.Context, err error, failMsg string, logMsg string, taskID uint64) {
	lang := middleware.GetLang(c)

	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(
			http.StatusConflict,
			apierrors.CreateReasonError(http.StatusConflict, conflict.Code, conflict.Data, conflict.Message, lang),
		)
		return
	}

	var invalid *domain.ValidationError
	if errors.As(err, &invalid) {
		apiErr := apierrors.CreateError(http.StatusBadRequest, apierrors.MsgInvalidTaskPayload, lang)
		apiErr.ErrDetails.Reason = invalid.Error()
		c.JSON(http.StatusBadRequest, apiErr)
		return
	}

	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, apierrors.CreateError(http.StatusNotFound, apierrors.MsgTaskNotFound, lang))
	case errors.Is(err, domain.ErrCategoryNotFound):
		c.JSON(http.StatusBadRequest, apierrors.CreateError(http.StatusBadRequest, apierrors.MsgCategoryNotFound, lang))
	case errors.Is(err, domain.ErrMemberNotFound):
		c.JSON(http.StatusBadRequest, apierrors.CreateError(http.StatusBadRequest, apierrors.MsgMemberNotFound, lang))
	case errors.Is(err, domain.ErrLicenceNotFound):
		c.JSON(http.StatusBadRequest, apierrors.CreateError(http.StatusBadRequest, apierrors.MsgLicenceNotFound, lang))
	case errors.Is(err, domain.ErrInvalidTask):
		c.JSON(http.StatusBadRequest, apierrors.CreateError(http.StatusBadRequest, apierrors.MsgInvalidTaskPayload, lang))
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, apierrors.CreateError(http.StatusForbidden, apierrors.MsgForbidden, lang))
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, apierrors.CreateError(http.StatusUnauthorized, apierrors.MsgUnauthenticated, lang))
	default:
		zap.L().Error(logMsg, zap.Uint64("task_id", taskID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, apierrors.CreateError(http.StatusInternalServerError, failMsg, lang))
	}
}
