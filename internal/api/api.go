package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/stockbin/internal/api/handlers"
	"github.com/andresuchdata/stockbin/internal/api/middleware"
	"github.com/andresuchdata/stockbin/internal/auth"
	"github.com/andresuchdata/stockbin/internal/report"
	"github.com/andresuchdata/stockbin/internal/repository"
	"github.com/andresuchdata/stockbin/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Stock         *service.StockService
	Bins          *service.BinLedger
	Commands      *service.CommandService
	Confirmations *service.ConfirmationService
	Teams         *service.TeamService

	Store    repository.Store
	Verifier *auth.Verifier
	Resolver *auth.MembershipResolver
	Archiver *report.Archiver
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID", "X-Report-Archive"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	if services == nil {
		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		return router
	}

	router.GET("/health", health(services.Store))

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(auth.Middleware(services.Verifier, services.Resolver))

	sessionHandler := handlers.NewSessionHandler(services.Teams, services.Resolver)
	apiGroup.GET("/session", sessionHandler.GetSession)
	apiGroup.POST("/teams", sessionHandler.CreateTeam)

	teamGroup := apiGroup.Group("")
	teamGroup.Use(auth.RequireTeam())

	stockHandler := handlers.NewStockHandler(services.Stock, services.Archiver)
	stockGroup := teamGroup.Group("/stock")
	{
		stockGroup.GET("", stockHandler.List)
		stockGroup.POST("/add", stockHandler.Add)
		stockGroup.PATCH("/:name", stockHandler.Update)
		stockGroup.POST("/new-day", stockHandler.NewDay)
		stockGroup.GET("/activity", stockHandler.Activity)
		stockGroup.GET("/report", stockHandler.Report)
	}
	teamGroup.GET("/suppliers", stockHandler.Suppliers)

	commandHandler := handlers.NewCommandHandler(services.Commands, services.Confirmations)
	teamGroup.POST("/commands/stock", commandHandler.Stock)
	teamGroup.POST("/commands/bin", commandHandler.Bin)
	teamGroup.POST("/confirmations/:token", commandHandler.Confirm)

	binHandler := handlers.NewBinHandler(services.Bins)
	binGroup := teamGroup.Group("/bins")
	{
		binGroup.GET("", binHandler.Aggregate)
		binGroup.GET("/history", binHandler.History)
		binGroup.POST("/movements", binHandler.RecordMovement)
		binGroup.POST("/edits", binHandler.PrepareEdit)
		binGroup.PUT("/status", binHandler.UpdateStatus)
		binGroup.PUT("/note", binHandler.SaveNote)
		binGroup.POST("/rollover", binHandler.Rollover)

		binGroup.POST("/parties", binHandler.AddParty)
		binGroup.DELETE("/parties/:id", binHandler.RemoveParty)

		binGroup.POST("/types", binHandler.AddBinType)
		binGroup.DELETE("/types/:id", binHandler.RemoveBinType)
		binGroup.PATCH("/types/:id", binHandler.UpdateBinType)

		binGroup.POST("/custom-types", binHandler.AddCustomType)
		binGroup.DELETE("/custom-types/:id", binHandler.RemoveCustomType)
		binGroup.PUT("/custom-types/:id/count", binHandler.UpdateCustomCount)
	}

	return router
}

// health stays 200 while the store is down so the app can still explain itself.
func health(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		switch {
		case store == nil || repository.IsUnavailable(store):
			status = "unavailable"
		default:
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				status = "error"
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": status})
	}
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
