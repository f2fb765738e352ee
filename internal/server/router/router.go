// Package router assembles the gin engine.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/server/handlers"
)

// Deps are the handlers and middleware the router mounts. Webhook and
// Metrics are optional.
type Deps struct {
	Auth          *handlers.AuthHandler
	Records       *handlers.RecordsHandler
	Webhook       *handlers.WebhookHandler
	Authenticator handlers.Authenticator
	Metrics       *metrics.Metrics
}

// New wires the Gin engine with required routes and middlewares.
func New(d Deps, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if d.Webhook != nil {
		r.GET("/webhook", d.Webhook.Verify)
		r.POST("/webhook", d.Webhook.Receive)
	}

	authGroup := r.Group("/api/auth")
	authGroup.POST("/check-allowed", d.Auth.CheckAllowed)
	authGroup.POST("/sign-up", d.Auth.SignUp)
	authGroup.POST("/sign-in", d.Auth.SignIn)
	authGroup.POST("/sign-out", d.Auth.SignOut)

	api := r.Group("/api", handlers.RequireUser(d.Authenticator, logger))
	h := d.Records

	api.GET("/dashboard", h.Dashboard)
	api.GET("/vocabulary", h.Vocabulary)

	api.GET("/cows", h.ListCows)
	api.POST("/cows", h.CreateCow)
	api.GET("/cows/:id", h.GetCow)
	api.PUT("/cows/:id", h.UpdateCow)
	api.DELETE("/cows/:id", h.DeleteCow)

	api.GET("/bulls", h.ListBulls)
	api.POST("/bulls", h.CreateBull)
	api.GET("/bulls/:id", h.GetBull)
	api.PUT("/bulls/:id", h.UpdateBull)
	api.DELETE("/bulls/:id", h.DeleteBull)

	api.GET("/breeding", h.ListBreeding)
	api.POST("/breeding", h.CreateBreeding)
	api.GET("/breeding/:id", h.GetBreeding)
	api.DELETE("/breeding/:id", h.DeleteBreeding)

	api.GET("/pregnancies", h.ListPregnancies)
	api.POST("/pregnancies", h.ConfirmPregnancy)
	api.GET("/pregnancies/:id", h.GetPregnancy)
	api.POST("/pregnancies/:id/reconcile", h.ReconcilePregnancy)
	api.POST("/pregnancies/:id/end", h.EndPregnancy)

	api.GET("/medicines", h.ListMedicines)
	api.GET("/medicines/alerts", h.MedicineAlerts)
	api.POST("/medicines", h.CreateMedicine)
	api.GET("/medicines/:id", h.GetMedicine)
	api.PUT("/medicines/:id", h.UpdateMedicine)
	api.DELETE("/medicines/:id", h.DeleteMedicine)

	api.GET("/treatments", h.ListTreatments)
	api.POST("/treatments", h.RecordTreatment)

	api.GET("/milking", h.ListMilking)
	api.GET("/milking/summary", h.MilkingSummary)
	api.POST("/milking", h.RecordMilking)
	api.DELETE("/milking/:id", h.DeleteMilking)

	api.GET("/reminders", h.ListReminders)
	api.POST("/reminders", h.CreateReminder)
	api.GET("/reminders/:id", h.GetReminder)
	api.PUT("/reminders/:id", h.UpdateReminder)
	api.POST("/reminders/:id/complete", h.CompleteReminder)
	api.DELETE("/reminders/:id", h.DeleteReminder)

	logger.Info("router initialized", zap.Int("routes", len(r.Routes())))

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
