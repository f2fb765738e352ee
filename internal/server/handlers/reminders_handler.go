package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/internal/service/reminders"
)

// ListReminders accepts completed=true|false, or pending_days=N for open
// reminders due within N days (overdue included).
func (h *RecordsHandler) ListReminders(c *gin.Context) {
	if c.Query("pending_days") != "" {
		days, err := queryInt(c, "pending_days")
		if err != nil {
			h.fail(c, err)
			return
		}
		items, err := h.svc.Reminders.Pending(c.Request.Context(), Owner(c), days)
		reply(h, c, http.StatusOK, items, err)
		return
	}

	completed, err := queryBool(c, "completed")
	if err != nil {
		h.fail(c, err)
		return
	}
	items, err := h.svc.Reminders.List(c.Request.Context(), Owner(c), completed)
	reply(h, c, http.StatusOK, items, err)
}

func (h *RecordsHandler) CreateReminder(c *gin.Context) {
	var in reminders.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	r, err := h.svc.Reminders.Create(c.Request.Context(), Owner(c), in)
	reply(h, c, http.StatusCreated, r, err)
}

func (h *RecordsHandler) GetReminder(c *gin.Context) {
	r, err := h.svc.Reminders.Get(c.Request.Context(), Owner(c), c.Param("id"))
	reply(h, c, http.StatusOK, r, err)
}

func (h *RecordsHandler) UpdateReminder(c *gin.Context) {
	var in reminders.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	r, err := h.svc.Reminders.Update(c.Request.Context(), Owner(c), c.Param("id"), in)
	reply(h, c, http.StatusOK, r, err)
}

func (h *RecordsHandler) CompleteReminder(c *gin.Context) {
	r, err := h.svc.Reminders.Complete(c.Request.Context(), Owner(c), c.Param("id"))
	reply(h, c, http.StatusOK, r, err)
}

func (h *RecordsHandler) DeleteReminder(c *gin.Context) {
	h.noContent(c, h.svc.Reminders.Delete(c.Request.Context(), Owner(c), c.Param("id")))
}
