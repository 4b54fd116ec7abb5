package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"stayengine/internal/infra/config"
	"stayengine/internal/infra/obs"
)

type SlotHTTP interface {
	Create(c *gin.Context)
	CreateBulk(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	List(c *gin.Context)
}

type RuleHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Toggle(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
}

type CostHTTP interface {
	Calculate(c *gin.Context)
}

type Handlers struct {
	Slots SlotHTTP
	Rules RuleHTTP
	Costs CostHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key", "X-User-ID", "X-User-Role"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if obsMW.Metrics != nil {
		router.GET("/metrics", gin.WrapH(obsMW.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	properties := api.Group("/properties/:id")
	if h.Slots != nil {
		properties.GET("/slots", h.Slots.List)
		properties.POST("/slots", h.Slots.Create)
		properties.POST("/slots/bulk", h.Slots.CreateBulk)
		properties.PATCH("/slots/:slotId", h.Slots.Update)
		properties.DELETE("/slots/:slotId", h.Slots.Delete)
	}
	if h.Rules != nil {
		properties.GET("/pricing-rules", h.Rules.List)
		properties.POST("/pricing-rules", h.Rules.Create)
		properties.GET("/pricing-rules/:ruleId", h.Rules.Get)
		properties.PATCH("/pricing-rules/:ruleId", h.Rules.Update)
		properties.DELETE("/pricing-rules/:ruleId", h.Rules.Delete)
		properties.POST("/pricing-rules/:ruleId/toggle", h.Rules.Toggle)
	}
	if h.Costs != nil {
		properties.GET("/cost", h.Costs.Calculate)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
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

var (
	_ SlotHTTP = SlotHandler{}
	_ RuleHTTP = RuleHandler{}
	_ CostHTTP = CostHandler{}
)
