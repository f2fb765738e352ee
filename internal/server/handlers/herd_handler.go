package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/internal/domain/calendar"
	"github.com/mamadbah2/herdbook/internal/service/fields"
	"github.com/mamadbah2/herdbook/internal/service/herd"
)

func (h *RecordsHandler) ListCows(c *gin.Context) {
	cows, err := h.svc.Herd.ListCows(c.Request.Context(), Owner(c), c.Query("status"))
	reply(h, c, http.StatusOK, cows, err)
}

func (h *RecordsHandler) CreateCow(c *gin.Context) {
	var in herd.CowInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	cow, err := h.svc.Herd.CreateCow(c.Request.Context(), Owner(c), in)
	reply(h, c, http.StatusCreated, cow, err)
}

func (h *RecordsHandler) GetCow(c *gin.Context) {
	cow, err := h.svc.Herd.GetCow(c.Request.Context(), Owner(c), c.Param("id"))
	reply(h, c, http.StatusOK, cow, err)
}

func (h *RecordsHandler) UpdateCow(c *gin.Context) {
	var in herd.CowInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	cow, err := h.svc.Herd.UpdateCow(c.Request.Context(), Owner(c), c.Param("id"), in)
	reply(h, c, http.StatusOK, cow, err)
}

func (h *RecordsHandler) DeleteCow(c *gin.Context) {
	h.noContent(c, h.svc.Herd.DeleteCow(c.Request.Context(), Owner(c), c.Param("id")))
}

func (h *RecordsHandler) ListBulls(c *gin.Context) {
	bulls, err := h.svc.Herd.ListBulls(c.Request.Context(), Owner(c))
	reply(h, c, http.StatusOK, bulls, err)
}

func (h *RecordsHandler) CreateBull(c *gin.Context) {
	var in herd.BullInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	bull, err := h.svc.Herd.CreateBull(c.Request.Context(), Owner(c), in)
	reply(h, c, http.StatusCreated, bull, err)
}

func (h *RecordsHandler) GetBull(c *gin.Context) {
	bull, err := h.svc.Herd.GetBull(c.Request.Context(), Owner(c), c.Param("id"))
	reply(h, c, http.StatusOK, bull, err)
}

func (h *RecordsHandler) UpdateBull(c *gin.Context) {
	var in herd.BullInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	bull, err := h.svc.Herd.UpdateBull(c.Request.Context(), Owner(c), c.Param("id"), in)
	reply(h, c, http.StatusOK, bull, err)
}

func (h *RecordsHandler) DeleteBull(c *gin.Context) {
	h.noContent(c, h.svc.Herd.DeleteBull(c.Request.Context(), Owner(c), c.Param("id")))
}

// ListMilking accepts cow_id, from, to (YYYY-MM-DD) and limit.
func (h *RecordsHandler) ListMilking(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		h.fail(c, err)
		return
	}
	records, err := h.svc.Herd.ListMilking(c.Request.Context(), Owner(c), herd.MilkingQuery{
		CowID: c.Query("cow_id"),
		From:  c.Query("from"),
		To:    c.Query("to"),
		Limit: limit,
	})
	reply(h, c, http.StatusOK, records, err)
}

func (h *RecordsHandler) RecordMilking(c *gin.Context) {
	var in herd.MilkingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	record, err := h.svc.Herd.RecordMilking(c.Request.Context(), Owner(c), in)
	reply(h, c, http.StatusCreated, record, err)
}

func (h *RecordsHandler) DeleteMilking(c *gin.Context) {
	h.noContent(c, h.svc.Herd.DeleteMilking(c.Request.Context(), Owner(c), c.Param("id")))
}

// MilkingSummary totals one day, today unless ?date= is given.
func (h *RecordsHandler) MilkingSummary(c *gin.Context) {
	day, err := fields.OptionalDay("date", c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if day == nil {
		summary, err := h.svc.Herd.Today(c.Request.Context(), Owner(c))
		reply(h, c, http.StatusOK, summary, err)
		return
	}
	summary, err := h.svc.Herd.DailySummary(c.Request.Context(), Owner(c), calendar.Day(*day))
	reply(h, c, http.StatusOK, summary, err)
}
