package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sailclub/internal/adapter/http/dto"
	"sailclub/internal/adapter/http/handlers"
	"sailclub/internal/adapter/http/middleware"
	"sailclub/internal/core/domain"
	"sailclub/internal/core/ports"
	"sailclub/pkg/apierrors"
	"sailclub/pkg/translator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type taskServiceMock struct {
	mock.Mock
}

var _ ports.TaskService = (*taskServiceMock)(nil)

func (m *taskServiceMock) task(args mock.Arguments) (domain.HelperTask, error) {
	var task domain.HelperTask
	if value := args.Get(0); value != nil {
		task = value.(domain.HelperTask)
	}
	return task, args.Error(1)
}

func (m *taskServiceMock) ListTasks(ctx context.Context, actor domain.Member, query ports.TaskQuery) ([]domain.HelperTask, error) {
	args := m.Called(ctx, actor, query)

	var tasks []domain.HelperTask
	if value := args.Get(0); value != nil {
		tasks = value.([]domain.HelperTask)
	}
	return tasks, args.Error(1)
}

func (m *taskServiceMock) GetTask(ctx context.Context, actor domain.Member, id uint64) (domain.HelperTask, error) {
	return m.task(m.Called(ctx, actor, id))
}

func (m *taskServiceMock) CreateTask(ctx context.Context, actor domain.Member, fields domain.TaskFields) (domain.HelperTask, error) {
	return m.task(m.Called(ctx, actor, fields))
}

func (m *taskServiceMock) UpdateTask(ctx context.Context, actor domain.Member, id uint64, fields domain.TaskFields) (domain.HelperTask, error) {
	return m.task(m.Called(ctx, actor, id, fields))
}

func (m *taskServiceMock) SignUpAsCaptain(ctx context.Context, actor domain.Member, id uint64) (domain.HelperTask, error) {
	return m.task(m.Called(ctx, actor, id))
}

func (m *taskServiceMock) SignUpAsHelper(ctx context.Context, actor domain.Member, id uint64) (domain.HelperTask, error) {
	return m.task(m.Called(ctx, actor, id))
}

func (m *taskServiceMock) RemoveCaptain(ctx context.Context, actor domain.Member, id uint64) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *taskServiceMock) RemoveHelper(ctx context.Context, actor domain.Member, id uint64, memberID uint64) error {
	return m.Called(ctx, actor, id, memberID).Error(0)
}

func (m *taskServiceMock) MarkAsDone(ctx context.Context, actor domain.Member, id uint64, comment *string) (domain.HelperTask, error) {
	return m.task(m.Called(ctx, actor, id, comment))
}

func (m *taskServiceMock) ValidateTask(ctx context.Context, actor domain.Member, id uint64, req domain.ValidationRequest) (domain.HelperTask, error) {
	return m.task(m.Called(ctx, actor, id, req))
}

func (m *taskServiceMock) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)

	var categories []domain.Category
	if value := args.Get(0); value != nil {
		categories = value.([]domain.Category)
	}
	return categories, args.Error(1)
}

type memberRepositoryStub struct {
	members map[uint64]domain.Member
}

func (s memberRepositoryStub) GetMember(_ context.Context, id uint64) (domain.Member, error) {
	member, ok := s.members[id]
	if !ok {
		return domain.Member{}, domain.ErrMemberNotFound
	}
	return member, nil
}

func (s memberRepositoryStub) GetLicence(context.Context, uint64) (domain.Licence, error) {
	return domain.Licence{}, domain.ErrLicenceNotFound
}

var (
	editor = domain.Member{
		MemberRef: domain.MemberRef{ID: 1, FirstName: "Elsa", LastName: "Editor", Email: "elsa@example.org"},
		Roles:     []domain.Role{domain.RoleEditor},
	}
	sailor = domain.Member{
		MemberRef: domain.MemberRef{ID: 2, FirstName: "Sam", LastName: "Sailor", Email: "sam@example.org"},
	}
)

func newRouter(serviceMock *taskServiceMock) *gin.Engine {
	handler := handlers.NewTaskHandler(serviceMock)
	auth := middleware.AuthMiddleware(memberRepositoryStub{members: map[uint64]domain.Member{
		editor.ID: editor,
		sailor.ID: sailor,
	}})

	router := gin.New()
	group := router.Group("/api/helpers", middleware.LanguageMiddleware(), auth)
	group.GET("/categories", handler.ListCategories)
	group.GET("/tasks", handler.ListTasks)
	group.POST("/tasks", handler.CreateTask)
	group.GET("/tasks/:id", handler.GetTask)
	group.PUT("/tasks/:id", handler.UpdateTask)
	group.POST("/tasks/:id/sign-up-as-captain", handler.SignUpAsCaptain)
	group.POST("/tasks/:id/sign-up-as-helper", handler.SignUpAsHelper)
	group.DELETE("/tasks/:id/captain", handler.RemoveCaptain)
	group.DELETE("/tasks/:id/helpers/:member_id", handler.RemoveHelper)
	group.POST("/tasks/:id/mark-as-done", handler.MarkAsDone)
	group.POST("/tasks/:id/validate", handler.ValidateTask)
	return router
}

func doRequest(router *gin.Engine, method, path string, member *domain.Member, lang string, body any) *httptest.ResponseRecorder {
	var payload *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", lang)
	if member != nil {
		req.Header.Set(middleware.MemberIDHeader, jsonNumber(member.ID))
	}
	return serve(router, req)
}

func jsonNumber(id uint64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apierrors.JsonErr {
	t.Helper()
	var got apierrors.JsonErr
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

func shiftTask() domain.HelperTask {
	start := time.Date(2025, 6, 24, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 24, 12, 0, 0, 0, time.UTC)
	createdAt := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	signedUpAt := time.Date(2025, 6, 2, 18, 30, 0, 0, time.UTC)
	return domain.HelperTask{
		ID:               10,
		Category:         domain.Category{ID: 3, Title: "Harbour", ShortDescription: "Harbour work"},
		Title:            "Crane duty",
		ShortDescription: "Lift boats into the water",
		Contact:          editor.Ref(),
		Timing:           domain.Timing{StartsAt: &start, EndsAt: &end},
		HelperMinCount:   1,
		HelperMaxCount:   2,
		Published:        true,
		Helpers:          []domain.HelperSignup{{Member: sailor.Ref(), SignedUpAt: signedUpAt}},
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}

func TestTaskHandler_ListTasks_Success(t *testing.T) {
	serviceMock := new(taskServiceMock)
	year := 2025
	serviceMock.On("ListTasks", mock.Anything, sailor, ports.TaskQuery{Year: &year}).
		Return([]domain.HelperTask{shiftTask()}, nil).Once()

	rec := doRequest(newRouter(serviceMock), http.MethodGet, "/api/helpers/tasks?year=2025", &sailor, translator.LanguageEn, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []dto.TaskItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, uint64(10), got[0].ID)
	require.Equal(t, "shift", got[0].Type)
	require.Equal(t, "pending", got[0].State)
	require.Equal(t, "Harbour", got[0].Category.Title)
	require.Equal(t, "elsa@example.org", got[0].Contact.Email)
	require.Equal(t, "2025-06-24T09:00:00Z", *got[0].StartsAt)
	require.Nil(t, got[0].Deadline)
	require.Nil(t, got[0].Captain)
	require.Len(t, got[0].Helpers, 1)
	require.Equal(t, "Sam", got[0].Helpers[0].Member.FirstName)
	require.Empty(t, got[0].Helpers[0].Member.Email)
	require.Equal(t, "2025-06-02T18:30:00Z", got[0].Helpers[0].SignedUpAt)
	serviceMock.AssertExpectations(t)
}

func TestTaskHandler_ListTasks_InvalidYear(t *testing.T) {
	serviceMock := new(taskServiceMock)

	rec := doRequest(newRouter(serviceMock), http.MethodGet, "/api/helpers/tasks?year=soon", &sailor, translator.LanguageEn, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid year", decodeError(t, rec).ErrDetails.Message)
	serviceMock.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskHandler_ListTasks_Error(t *testing.T) {
	serviceMock := new(taskServiceMock)
	serviceMock.On("ListTasks", mock.Anything, sailor, ports.TaskQuery{}).Return(nil, errors.New("db is down")).Once()

	rec := doRequest(newRouter(serviceMock), http.MethodGet, "/api/helpers/tasks", &sailor, translator.LanguageEn, nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	got := decodeError(t, rec)
	require.Equal(t, http.StatusInternalServerError, got.ErrDetails.Code)
	require.Equal(t, "Failed to list tasks", got.ErrDetails.Message)
	serviceMock.AssertExpectations(t)
}

func TestTaskHandler_Unauthenticated(t *testing.T) {
	serviceMock := new(taskServiceMock)

	rec := doRequest(newRouter(serviceMock), http.MethodGet, "/api/helpers/tasks", nil, translator.LanguageFr, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Authentification requise", decodeError(t, rec).ErrDetails.Message)
}

func TestTaskHandler_WithoutAuthMiddlewareIsUnauthenticated(t *testing.T) {
	serviceMock := new(taskServiceMock)
	handler := handlers.NewTaskHandler(serviceMock)
	router := gin.New()
	router.Use(middleware.LanguageMiddleware())
	router.GET("/api/helpers/tasks", handler.ListTasks)

	rec := doRequest(router, http.MethodGet, "/api/helpers/tasks", &sailor, translator.LanguageEn, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Authentication required", decodeError(t, rec).ErrDetails.Message)
	serviceMock.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskHandler_GetTask_NotFound(t *testing.T) {
	serviceMock := new(taskServiceMock)
	serviceMock.On("GetTask", mock.Anything, sailor, uint64(999)).Return(nil, domain.ErrTaskNotFound).Once()

	rec := doRequest(newRouter(serviceMock), http.MethodGet, "/api/helpers/tasks/999", &sailor, translator.LanguageEn, nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Task not found", decodeError(t, rec).ErrDetails.Message)
	serviceMock.AssertExpectations(t)
}

func TestTaskHandler_GetTask_InvalidID(t *testing.T) {
	serviceMock := new(taskServiceMock)

	rec := doRequest(newRouter(serviceMock), http.MethodGet, "/api/helpers/tasks/invalid", &sailor, translator.LanguageEn, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid task id", decodeError(t, rec).ErrDetails.Message)
}

func TestTaskHandler_CreateTask_Success(t *testing.T) {
	serviceMock := new(taskServiceMock)
	task := shiftTask()
	serviceMock.On("CreateTask", mock.Anything, editor, mock.MatchedBy(func(fields domain.TaskFields) bool {
		return fields.Title == "Crane duty" &&
			fields.ContactID == editor.ID &&
			fields.Timing.StartsAt != nil &&
			fields.Timing.StartsAt.Equal(*task.Timing.StartsAt) &&
			fields.HelperMaxCount == 2
	})).Return(task, nil).Once()

	body := map[string]any{
		"category_id":       3,
		"title":             " Crane duty ",
		"short_description": "Lift boats into the water",
		"contact_id":        editor.ID,
		"starts_at":         "2025-06-24T11:00:00+02:00",
		"ends_at":           "2025-06-24T14:00:00+02:00",
		"helper_min_count":  1,
		"helper_max_count":  2,
		"published":         true,
	}
	rec := doRequest(newRouter(serviceMock), http.MethodPost, "/api/helpers/tasks", &editor, translator.LanguageEn, body)

	require.Equal(t, http.StatusCreated, rec.Code)
	serviceMock.AssertExpectations(t)
}

func TestTaskHandler_CreateTask_InvalidPayload(t *testing.T) {
	serviceMock := new(taskServiceMock)

	body := map[string]any{
		"category_id":       3,
		"title":             "Crane duty",
		"short_description": "Lift boats",
		"contact_id":        editor.ID,
		"deadline":          "next tuesday",
		"helper_min_count":  1,
		"helper_max_count":  2,
	}
	rec := doRequest(newRouter(serviceMock), http.MethodPost, "/api/helpers/tasks", &editor, translator.LanguageEn, body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid task payload", decodeError(t, rec).ErrDetails.Message)
}

func TestTaskHandler_CreateTask_Forbidden(t *testing.T) {
	serviceMock := new(taskServiceMock)
	serviceMock.On("CreateTask", mock.Anything, sailor, mock.Anything).Return(nil, domain.ErrForbidden).Once()

	body := map[string]any{
		"category_id":       3,
		"title":             "Crane duty",
		"short_description": "Lift boats",
		"contact_id":        sailor.ID,
		"deadline":          "2025-06-24T11:00:00Z",
		"helper_min_count":  0,
		"helper_max_count":  0,
	}
	rec := doRequest(newRouter(serviceMock), http.MethodPost, "/api/helpers/tasks", &sailor, translator.LanguageEn, body)

	require.Equal(t, http.StatusForbidden, rec.Code)
	serviceMock.AssertExpectations(t)
}

func TestTaskHandler_UpdateTask_Conflict(t *testing.T) {
	serviceMock := new(taskServiceMock)
	conflict := domain.NewConflict(
		domain.ConflictTaskHelperMaxBelowCount,
		"Cannot set helper maximum below the 1 signed-up helpers",
		map[string]any{"Count": 1},
	)
	serviceMock.On("UpdateTask", mock.Anything, editor, uint64(10), mock.Anything).Return(nil, conflict).Once()

	body := map[string]any{
		"category_id":       3,
		"title":             "Crane duty",
		"short_description": "Lift boats",
		"contact_id":        editor.ID,
		"starts_at":         "2025-06-24T09:00:00Z",
		"ends_at":           "2025-06-24T12:00:00Z",
		"helper_min_count":  0,
		"helper_max_count":  0,
		"published":         true,
	}
	rec := doRequest(newRouter(serviceMock), http.MethodPut, "/api/helpers/tasks/10", &editor, translator.LanguageFr, body)

	require.Equal(t, http.StatusConflict, rec.Code)
	got := decodeError(t, rec)
	require.Equal(t, domain.ConflictTaskHelperMaxBelowCount, got.ErrDetails.Reason)
	require.Equal(t, "Le maximum d'aides ne peut pas être inférieur aux 1 aides inscrits", got.ErrDetails.Message)
	serviceMock.AssertExpectations(t)
}

func TestTaskHandler_SignUpAsHelper_LimitReached(t *testing.T) {
	serviceMock := new(taskServiceMock)
	serviceMock.On("SignUpAsHelper", mock.Anything, sailor, uint64(10)).
		Return(nil, domain.NewConflict(domain.ConflictTaskHelperLimitReached, "Task helper limit reached", nil)).Once()

	rec := doRequest(newRouter(serviceMock), http.MethodPost, "/api/helpers/tasks/10/sign-up-as-helper", &sailor, translator.LanguageEn, nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Task helper limit reached", decodeError(t, rec).ErrDetails.Message)
	serviceMock.AssertExpectations(t)
}

func TestTaskHandler_SignUpAsCaptain_NeedsLicence(t *testing.T) {
	serviceMock := new(taskServiceMock)
	serviceMock.On("SignUpAsCaptain", mock.Anything, sailor, uint64(10)).
		Return(nil, domain.NewConflict(domain.ConflictTaskCaptainNeedsLicence, "Task captain needs licence: D", map[string]any{"Licence": "D"})).Once()

	rec := doRequest(newRouter(serviceMock), http.MethodPost, "/api/helpers/tasks/10/sign-up-as-captain", &sailor, translator.LanguageEn, nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Task captain needs licence: D", decodeError(t, rec).ErrDetails.Message)
	serviceMock.AssertExpectations(t)
}

func TestTaskHandler_SignUpAsHelper_Success(t *testing.T) {
	serviceMock := new(taskServiceMock)
	serviceMock.On("SignUpAsHelper", mock.Anything, sailor, uint64(10)).Return(shiftTask(), nil).Once()

	rec := doRequest(newRouter(serviceMock), http.MethodPost, "/api/helpers/tasks/10/sign-up-as-helper", &sailor, translator.LanguageEn, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	serviceMock.AssertExpectations(t)
}

func TestTaskHandler_RemoveHelper_NoContent(t *testing.T) {
	serviceMock := new(taskServiceMock)
	serviceMock.On("RemoveHelper", mock.Anything, editor, uint64(10), sailor.ID).Return(nil).Once()

	rec := doRequest(newRouter(serviceMock), http.MethodDelete, "/api/helpers/tasks/10/helpers/2", &editor, translator.LanguageEn, nil)

	require.Equal(t, http.StatusNoContent, rec.Code)
	serviceMock.AssertExpectations(t)
}

func TestTaskHandler_RemoveCaptain_Forbidden(t *testing.T) {
	serviceMock := new(taskServiceMock)
	serviceMock.On("RemoveCaptain", mock.Anything, sailor, uint64(10)).Return(domain.ErrForbidden).Once()

	rec := doRequest(newRouter(serviceMock), http.MethodDelete, "/api/helpers/tasks/10/captain", &sailor, translator.LanguageEn, nil)

	require.Equal(t, http.StatusForbidden, rec.Code)
	serviceMock.AssertExpectations(t)
}

func TestTaskHandler_MarkAsDone_WithoutBody(t *testing.T) {
	serviceMock := new(taskServiceMock)
	serviceMock.On("MarkAsDone", mock.Anything, editor, uint64(10), (*string)(nil)).Return(shiftTask(), nil).Once()

	rec := doRequest(newRouter(serviceMock), http.MethodPost, "/api/helpers/tasks/10/mark-as-done", &editor, translator.LanguageEn, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	serviceMock.AssertExpectations(t)
}

func TestTaskHandler_MarkAsDone_BeforeStart(t *testing.T) {
	serviceMock := new(taskServiceMock)
	serviceMock.On("MarkAsDone", mock.Anything, editor, uint64(10), mock.MatchedBy(func(comment *string) bool {
		return comment != nil && *comment == "all good"
	})).Return(nil, domain.NewConflict(domain.ConflictTaskDoneBeforeStart, "Cannot mark a task as done before it starts", nil)).Once()

	rec := doRequest(newRouter(serviceMock), http.MethodPost, "/api/helpers/tasks/10/mark-as-done", &editor, translator.LanguageEn, map[string]any{"comment": " all good "})

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Cannot mark a task as done before it starts", decodeError(t, rec).ErrDetails.Message)
	serviceMock.AssertExpectations(t)
}

func TestTaskHandler_ValidateTask_BadPartition(t *testing.T) {
	serviceMock := new(taskServiceMock)
	serviceMock.On("ValidateTask", mock.Anything, editor, uint64(10), domain.ValidationRequest{
		ValidateHelperIDs: []uint64{2},
		RemoveHelperIDs:   []uint64{2},
	}).Return(nil, &domain.ValidationError{Field: "helpers", Reason: "member 2 is both validated and removed"}).Once()

	body := map[string]any{"validate_helper_ids": []uint64{2}, "remove_helper_ids": []uint64{2}}
	rec := doRequest(newRouter(serviceMock), http.MethodPost, "/api/helpers/tasks/10/validate", &editor, translator.LanguageEn, body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid helpers: member 2 is both validated and removed", decodeError(t, rec).ErrDetails.Reason)
	serviceMock.AssertExpectations(t)
}

func TestTaskHandler_ListCategories(t *testing.T) {
	serviceMock := new(taskServiceMock)
	serviceMock.On("ListCategories", mock.Anything).Return([]domain.Category{{ID: 3, Title: "Harbour", ShortDescription: "Harbour work"}}, nil).Once()

	rec := doRequest(newRouter(serviceMock), http.MethodGet, "/api/helpers/categories", &sailor, translator.LanguageEn, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []dto.CategoryItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, []dto.CategoryItem{{ID: 3, Title: "Harbour", ShortDescription: "Harbour work"}}, got)
	serviceMock.AssertExpectations(t)
}
