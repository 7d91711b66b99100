package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"sailclub/internal/adapter/http/middleware"
)

const (
	StatusOk        = "ok"
	StatusDown      = "down"
	StatusDisabled  = "disabled"
	healthDBTimeout = 2 * time.Second
	healthTimeFmt   = "2006-01-02 15:04:05"
)

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ReminderSchedule reports when the reminder job fires next.
type ReminderSchedule interface {
	Next(t time.Time) time.Time
}

type HealthBasic struct {
	AppName           string `json:"app_name"`
	AppVersion        string `json:"app_version"`
	CurrentSystemTime string `json:"current_system_time"`
	Message           string `json:"message"`
}

type HealthServices struct {
	Mysql     string `json:"mysql"`
	Reminders string `json:"reminders"`
}

type HealthAdvanced struct {
	AppName           string         `json:"app_name"`
	AppVersion        string         `json:"app_version"`
	CurrentSystemTime string         `json:"current_system_time"`
	Language          string         `json:"language"`
	Status            HealthServices `json:"status"`
	NextReminderRun   *string        `json:"next_reminder_run,omitempty"`
}

type HealthHandler struct {
	db        Pinger
	reminders ReminderSchedule
	now       func() time.Time
}

// NewHealthHandler builds the health endpoints. reminders may be nil when the
// reminder job is not scheduled.
func NewHealthHandler(db Pinger, reminders ReminderSchedule) *HealthHandler {
	return &HealthHandler{db: db, reminders: reminders, now: time.Now}
}

func (h *HealthHandler) CheckHealth(c *gin.Context) {
	statusCode := http.StatusOK
	message := StatusOk

	if !h.databaseUp(c.Request.Context()) {
		statusCode = http.StatusServiceUnavailable
		message = StatusDown
	}

	c.JSON(statusCode, HealthBasic{
		AppName:           appName(),
		AppVersion:        appVersion(),
		CurrentSystemTime: h.now().Format(healthTimeFmt),
		Message:           message,
	})
}

func (h *HealthHandler) CheckHealthReport(c *gin.Context) {
	now := h.now()
	report := HealthAdvanced{
		AppName:           appName(),
		AppVersion:        appVersion(),
		CurrentSystemTime: now.Format(healthTimeFmt),
		Language:          middleware.GetLang(c),
		Status: HealthServices{
			Mysql:     StatusDown,
			Reminders: StatusDisabled,
		},
	}

	if h.databaseUp(c.Request.Context()) {
		report.Status.Mysql = StatusOk
	}
	if h.reminders != nil {
		next := h.reminders.Next(now).Format(time.RFC3339)
		report.Status.Reminders = StatusOk
		report.NextReminderRun = &next
	}

	c.JSON(http.StatusOK, report)
}

func (h *HealthHandler) databaseUp(ctx context.Context) bool {
	if h.db == nil {
		return false
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, healthDBTimeout)
	defer cancel()
	return h.db.PingContext(timeoutCtx) == nil
}

func appName() string {
	if name := os.Getenv("APP_NAME"); name != "" {
		return name
	}
	return "sailclub"
}

func appVersion() string {
	if version := os.Getenv("APP_VERSION"); version != "" {
		return version
	}
	return "dev"
}
