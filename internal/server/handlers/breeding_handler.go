package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/internal/service/breeding"
)

func (h *RecordsHandler) ListBreeding(c *gin.Context) {
	records, err := h.svc.Breeding.ListBreeding(c.Request.Context(), Owner(c))
	reply(h, c, http.StatusOK, records, err)
}

func (h *RecordsHandler) CreateBreeding(c *gin.Context) {
	var in breeding.BreedingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	record, err := h.svc.Breeding.CreateBreeding(c.Request.Context(), Owner(c), in)
	reply(h, c, http.StatusCreated, record, err)
}

func (h *RecordsHandler) GetBreeding(c *gin.Context) {
	record, err := h.svc.Breeding.GetBreeding(c.Request.Context(), Owner(c), c.Param("id"))
	reply(h, c, http.StatusOK, record, err)
}

func (h *RecordsHandler) DeleteBreeding(c *gin.Context) {
	h.noContent(c, h.svc.Breeding.DeleteBreeding(c.Request.Context(), Owner(c), c.Param("id")))
}

func (h *RecordsHandler) ListPregnancies(c *gin.Context) {
	pregnancies, err := h.svc.Breeding.ListPregnancies(c.Request.Context(), Owner(c), c.Query("cow_id"))
	reply(h, c, http.StatusOK, pregnancies, err)
}

func (h *RecordsHandler) GetPregnancy(c *gin.Context) {
	p, err := h.svc.Breeding.GetPregnancy(c.Request.Context(), Owner(c), c.Param("id"))
	reply(h, c, http.StatusOK, p, err)
}

// ConfirmPregnancy answers 500 with the pregnancy id and pending steps when
// the store could only apply part of the transition.
func (h *RecordsHandler) ConfirmPregnancy(c *gin.Context) {
	var in breeding.PregnancyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, err)
		return
	}
	p, err := h.svc.Breeding.ConfirmPregnancy(c.Request.Context(), Owner(c), in)
	reply(h, c, http.StatusCreated, p, err)
}

func (h *RecordsHandler) ReconcilePregnancy(c *gin.Context) {
	p, err := h.svc.Breeding.ReconcilePregnancy(c.Request.Context(), Owner(c), c.Param("id"))
	reply(h, c, http.StatusOK, p, err)
}

func (h *RecordsHandler) EndPregnancy(c *gin.Context) {
	h.noContent(c, h.svc.Breeding.EndPregnancy(c.Request.Context(), Owner(c), c.Param("id")))
}
