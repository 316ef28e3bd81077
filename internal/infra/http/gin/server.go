package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"coastalstay/internal/infra/config"
	"coastalstay/internal/infra/obs"
)

type PropertiesHTTP interface {
	Catalog(c *gin.Context)
	Detail(c *gin.Context)
	Quote(c *gin.Context)
	Calendar(c *gin.Context)
}

type InquiriesHTTP interface {
	Submit(c *gin.Context)
}

type AdminHTTP interface {
	ListProperties(c *gin.Context)
	GetProperty(c *gin.Context)
	CreateProperty(c *gin.Context)
	UpdateProperty(c *gin.Context)
	SetPricing(c *gin.Context)
	AddBooking(c *gin.Context)
	ReplaceBookings(c *gin.Context)
	RemoveBooking(c *gin.Context)
	ExportBookings(c *gin.Context)
	Publish(c *gin.Context)
	Unpublish(c *gin.Context)
	UploadPhoto(c *gin.Context)
	ListInquiries(c *gin.Context)
}

// Handlers groups the HTTP handlers NewServer routes to.
type Handlers struct {
	Properties     PropertiesHTTP
	Inquiries      InquiriesHTTP
	Auth           AuthHTTP
	Admin          AdminHTTP
	AuthMiddleware gin.HandlerFunc
}

// NewServer builds the gin engine with middleware and every route.
func NewServer(cfg config.Config, obsMW obs.Middleware, metrics *obs.Metrics, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, metrics, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the gin engine without binding it to an address.
func NewRouter(cfg config.Config, obsMW obs.Middleware, metrics *obs.Metrics, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	if metrics != nil {
		router.Use(metrics.HTTP())
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Disposition",
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if metrics != nil {
		router.GET("/metrics", metrics.Handler())
	}

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Properties != nil {
		api.GET("/properties", h.Properties.Catalog)
		api.GET("/properties/:id", h.Properties.Detail)
		api.GET("/properties/:id/quote", h.Properties.Quote)
		api.GET("/properties/:id/calendar", h.Properties.Calendar)
	}
	if h.Inquiries != nil {
		api.POST("/inquiries", h.Inquiries.Submit)
	}
	if h.Admin != nil {
		admin := api.Group("/admin")
		admin.GET("/properties", h.Admin.ListProperties)
		admin.POST("/properties", h.Admin.CreateProperty)
		admin.GET("/properties/:id", h.Admin.GetProperty)
		admin.PUT("/properties/:id", h.Admin.UpdateProperty)
		admin.PUT("/properties/:id/pricing", h.Admin.SetPricing)
		admin.POST("/properties/:id/bookings", h.Admin.AddBooking)
		admin.PUT("/properties/:id/bookings", h.Admin.ReplaceBookings)
		admin.GET("/properties/:id/bookings/export", h.Admin.ExportBookings)
		admin.DELETE("/properties/:id/bookings/:bookingId", h.Admin.RemoveBooking)
		admin.POST("/properties/:id/publish", h.Admin.Publish)
		admin.POST("/properties/:id/unpublish", h.Admin.Unpublish)
		admin.POST("/properties/:id/photos", h.Admin.UploadPhoto)
		admin.GET("/inquiries", h.Admin.ListInquiries)
	}

	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
