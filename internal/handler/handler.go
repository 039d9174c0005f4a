package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"presence/internal/accounts"
	"presence/internal/auth"
	"presence/internal/employee"
	"presence/internal/presence"
)

// Scanner records scans; *presence.Recorder satisfies it.
type Scanner interface {
	RecordScan(ctx context.Context, rawCode, action, reason string) (presence.Event, error)
}

// Presences is the admin side of the event log; *presence.Service satisfies it.
type Presences interface {
	List(ctx context.Context, f presence.Filter) ([]presence.Event, error)
	Get(ctx context.Context, id string) (presence.Event, error)
	Stats(ctx context.Context) (presence.Stats, error)
	Create(ctx context.Context, in presence.Event) (presence.Event, error)
	Update(ctx context.Context, id string, in presence.Event) (presence.Event, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

// Employees is the employee directory; *employee.Service satisfies it.
type Employees interface {
	List(ctx context.Context, department string) ([]employee.Employee, error)
	Get(ctx context.Context, id string) (employee.Employee, error)
	Create(ctx context.Context, e employee.Employee) (employee.Employee, error)
	Update(ctx context.Context, id string, e employee.Employee) (employee.Employee, error)
	Delete(ctx context.Context, id string) error
	GenerateQR(ctx context.Context, id string) (string, error)
}

// Authenticator logs admins in; *accounts.Authenticator satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (accounts.Session, error)
}

// Publisher pushes events to live clients; *live.Hub satisfies it.
type Publisher interface {
	Publish(msgType string, content interface{})
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) bool

// Deps wires the handler. Publisher, WS and Health are optional.
type Deps struct {
	Scanner    Scanner
	Presences  Presences
	Employees  Employees
	Auth       Authenticator
	Publisher  Publisher
	WS         http.HandlerFunc
	Health     map[string]HealthCheck
	JWTKey     string
	JWTIssuer  string
	ScanLimits gin.HandlerFunc
}

// Handler serves the HTTP API.
type Handler struct {
	d Deps
}

// New creates a handler.
func New(d Deps) *Handler {
	return &Handler{d: d}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if h.d.WS != nil {
		r.GET("/ws/presences", auth.AdminAuthWS(h.d.JWTKey, h.d.JWTIssuer), gin.WrapF(h.d.WS))
	}

	api := r.Group("/api")
	api.POST("/auth/login", h.login)

	scan := []gin.HandlerFunc{h.scan}
	if h.d.ScanLimits != nil {
		scan = append([]gin.HandlerFunc{h.d.ScanLimits}, scan...)
	}
	api.POST("/presences/scan", scan...)

	admin := api.Group("", auth.AdminAuth(h.d.JWTKey, h.d.JWTIssuer))
	admin.GET("/auth/validate", h.validate)

	admin.GET("/presences", h.listPresences)
	admin.GET("/presences/stats", h.presenceStats)
	admin.GET("/presences/:id", h.getPresence)
	admin.POST("/presences", h.createPresence)
	admin.PUT("/presences/:id", h.updatePresence)
	admin.DELETE("/presences/:id", h.deletePresence)
	admin.POST("/presences/batch-delete", h.batchDeletePresences)

	admin.GET("/employees", h.listEmployees)
	admin.GET("/employees/:id", h.getEmployee)
	admin.POST("/employees", h.createEmployee)
	admin.PUT("/employees/:id", h.updateEmployee)
	admin.DELETE("/employees/:id", h.deleteEmployee)
	admin.GET("/employees/:id/qr", h.employeeQR)
}

func (h *Handler) healthz(c *gin.Context) {
	body := gin.H{"status": "ok"}
	status := http.StatusOK
	for name, check := range h.d.Health {
		ok := check(c.Request.Context())
		body[name] = ok
		if !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

var validationStatus = map[presence.Code]int{
	presence.CodeMalformedCode:        http.StatusBadRequest,
	presence.CodeEmployeeNotFound:     http.StatusNotFound,
	presence.CodeDuplicateAction:      http.StatusConflict,
	presence.CodeArrivalRequired:      http.StatusUnprocessableEntity,
	presence.CodeOutsidePauseWindow:   http.StatusUnprocessableEntity,
	presence.CodePauseStartRequired:   http.StatusUnprocessableEntity,
	presence.CodeTooEarlyForDeparture: http.StatusUnprocessableEntity,
}

// writeError maps domain errors onto {"error", "code"} responses.
func writeError(c *gin.Context, err error) {
	var ve *presence.ValidationError
	switch {
	case errors.As(err, &ve):
		status, ok := validationStatus[ve.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		abort(c, status, ve.Message, string(ve.Code))
	case errors.Is(err, presence.ErrNotFound), errors.Is(err, employee.ErrNotFound):
		abort(c, http.StatusNotFound, err.Error(), "NotFound")
	case errors.Is(err, presence.ErrInvalid), errors.Is(err, employee.ErrInvalid):
		abort(c, http.StatusBadRequest, err.Error(), "InvalidRequest")
	case errors.Is(err, employee.ErrDuplicateRegistrationNumber), errors.Is(err, employee.ErrDuplicateEmail):
		abort(c, http.StatusConflict, err.Error(), "Conflict")
	case errors.Is(err, accounts.ErrInvalidCredentials):
		abort(c, http.StatusUnauthorized, err.Error(), "InvalidCredentials")
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		abort(c, http.StatusInternalServerError, "internal error", "Internal")
	}
}

func abort(c *gin.Context, status int, msg, code string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}

func badRequest(c *gin.Context, err error) {
	abort(c, http.StatusBadRequest, err.Error(), "InvalidRequest")
}
