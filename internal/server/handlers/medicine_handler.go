package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/internal/service/medicine"
)

func (h *RecordsHandler) ListMedicines(c *gin.Context) {
	items, err := h.svc.Medicine.ListMedicines(c.Request.Context(), Owner(c))
	reply(h, c, http.StatusOK, items, err)
}

func (h *RecordsHandler) MedicineAlerts(c *gin.Context) {
	alerts, err := h.svc.Medicine.Alerts(c.Request.Context(), Owner(c))
	reply(h, c, http.StatusOK, alerts, err)
}

func (h *RecordsHandler) CreateMedicine(c *gin.Context) {
	var in medicine.MedicineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	item, err := h.svc.Medicine.CreateMedicine(c.Request.Context(), Owner(c), in)
	reply(h, c, http.StatusCreated, item, err)
}

func (h *RecordsHandler) GetMedicine(c *gin.Context) {
	item, err := h.svc.Medicine.GetMedicine(c.Request.Context(), Owner(c), c.Param("id"))
	reply(h, c, http.StatusOK, item, err)
}

func (h *RecordsHandler) UpdateMedicine(c *gin.Context) {
	var in medicine.MedicineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	item, err := h.svc.Medicine.UpdateMedicine(c.Request.Context(), Owner(c), c.Param("id"), in)
	reply(h, c, http.StatusOK, item, err)
}

func (h *RecordsHandler) DeleteMedicine(c *gin.Context) {
	h.noContent(c, h.svc.Medicine.DeleteMedicine(c.Request.Context(), Owner(c), c.Param("id")))
}

// ListTreatments accepts cow_id and limit.
func (h *RecordsHandler) ListTreatments(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		h.fail(c, err)
		return
	}
	items, err := h.svc.Medicine.ListTreatments(c.Request.Context(), Owner(c), c.Query("cow_id"), limit)
	reply(h, c, http.StatusOK, items, err)
}

func (h *RecordsHandler) RecordTreatment(c *gin.Context) {
	var in medicine.TreatmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	result, err := h.svc.Medicine.RecordTreatment(c.Request.Context(), Owner(c), in)
	reply(h, c, http.StatusCreated, result, err)
}
