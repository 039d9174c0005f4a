package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"presence/internal/metrics"
	"presence/internal/presence"
)

// EventRecorded is the live message type for new events.
const EventRecorded = "presence.recorded"

type scanRequest struct {
	Code   string `json:"code"`
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

func (h *Handler) scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	start := time.Now()
	evt, err := h.d.Scanner.RecordScan(c.Request.Context(), req.Code, req.Action, req.Reason)
	metrics.ObserveScan(req.Action, scanOutcome(err), time.Since(start))
	if err != nil {
		writeError(c, err)
		return
	}
	h.publish(evt)
	c.JSON(http.StatusCreated, evt)
}

func scanOutcome(err error) string {
	if err == nil {
		return "success"
	}
	var ve *presence.ValidationError
	if errors.As(err, &ve) {
		return string(ve.Code)
	}
	return "error"
}

func (h *Handler) publish(evt presence.Event) {
	if h.d.Publisher != nil {
		h.d.Publisher.Publish(EventRecorded, evt)
	}
}

func (h *Handler) listPresences(c *gin.Context) {
	events, err := h.d.Presences.List(c.Request.Context(), presence.Filter{
		Date:       c.Query("date"),
		Query:      c.Query("query"),
		EmployeeID: c.Query("employee_id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if events == nil {
		events = []presence.Event{}
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) presenceStats(c *gin.Context) {
	stats, err := h.d.Presences.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) getPresence(c *gin.Context) {
	evt, err := h.d.Presences.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, evt)
}

type eventRequest struct {
	EmployeeID         *string `json:"employeeId"`
	Name               string  `json:"name"`
	RegistrationNumber string  `json:"registrationNumber"`
	Date               string  `json:"date"`
	Time               string  `json:"time"`
	Action             string  `json:"action"`
	Status             string  `json:"status"`
	Note               string  `json:"note"`
	OriginMethod       string  `json:"originMethod"`
}

func (r eventRequest) event() presence.Event {
	return presence.Event{
		EmployeeID:         r.EmployeeID,
		Name:               r.Name,
		RegistrationNumber: r.RegistrationNumber,
		Date:               r.Date,
		Time:               r.Time,
		Action:             r.Action,
		Status:             r.Status,
		Note:               r.Note,
		OriginMethod:       r.OriginMethod,
	}
}

func (h *Handler) createPresence(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	evt, err := h.d.Presences.Create(c.Request.Context(), req.event())
	if err != nil {
		writeError(c, err)
		return
	}
	h.publish(evt)
	c.JSON(http.StatusCreated, evt)
}

func (h *Handler) updatePresence(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	evt, err := h.d.Presences.Update(c.Request.Context(), c.Param("id"), req.event())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, evt)
}

func (h *Handler) deletePresence(c *gin.Context) {
	if err := h.d.Presences.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) batchDeletePresences(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	n, err := h.d.Presences.DeleteMany(c.Request.Context(), req.IDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
