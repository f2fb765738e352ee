package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/breeding"
	"github.com/mamadbah2/herdbook/internal/service/herd"
	"github.com/mamadbah2/herdbook/internal/service/medicine"
	"github.com/mamadbah2/herdbook/internal/service/reminders"
	"github.com/mamadbah2/herdbook/internal/service/reporting"
)

// Services bundles the record services behind the JSON API.
type Services struct {
	Herd      *herd.Service
	Breeding  *breeding.Service
	Medicine  *medicine.Service
	Reminders *reminders.Service
	Reporting *reporting.Service
}

// RecordsHandler serves the owner-scoped record API. Every handler expects
// RequireUser to have run.
type RecordsHandler struct {
	svc    Services
	logger *zap.Logger
}

func NewRecordsHandler(svc Services, logger *zap.Logger) *RecordsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsHandler{svc: svc, logger: logger}
}

func (h *RecordsHandler) fail(c *gin.Context, err error) {
	respondError(c, h.logger, err)
}

// reply writes value with status, or the mapped error.
func reply[T any](h *RecordsHandler, c *gin.Context, status int, value T, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, value)
}

func (h *RecordsHandler) noContent(c *gin.Context, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecordsHandler) Dashboard(c *gin.Context) {
	d, err := h.svc.Reporting.Dashboard(c.Request.Context(), Owner(c))
	reply(h, c, http.StatusOK, d, err)
}

// Vocabulary lists the accepted enum values for form clients.
func (h *RecordsHandler) Vocabulary(c *gin.Context) {
	c.JSON(http.StatusOK, models.Vocabulary())
}
