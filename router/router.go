package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dinecommand/controllers"
	"github.com/yeremiapane/dinecommand/kds"
	"github.com/yeremiapane/dinecommand/middlewares"
	"github.com/yeremiapane/dinecommand/services"
	"github.com/yeremiapane/dinecommand/store"
)

// Deps is everything the HTTP layer talks to.
type Deps struct {
	Store                 *store.TableStore
	Guard                 *services.StatusGuard
	Pipeline              *services.AlertPipeline
	Registry              *services.ConsoleRegistry
	Hub                   *kds.FloorHub
	CORSAllowedOrigin     string
	AnalysisRatePerMinute int
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Global middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSAllowedOrigin))
	r.Use(middlewares.LoggerMiddleware())

	tableCtrl := controllers.NewTableController(d.Store, d.Guard)
	alertCtrl := controllers.NewAlertController(d.Store, d.Pipeline)
	advisoryCtrl := controllers.NewAdvisoryController(d.Store, d.Registry)
	socketCtrl := controllers.NewFloorSocketController(d.Hub, d.Store)
	analysisLimiter := middlewares.NewRateLimiter(d.AnalysisRatePerMinute)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "tables": d.Store.Len()})
	})

	api := r.Group("/api")
	{
		api.GET("/stats", tableCtrl.GetStats)

		// Reads are filtered by the staff role tag
		viewer := api.Group("")
		viewer.Use(middlewares.StaffRole())
		{
			viewer.GET("/tables", tableCtrl.ListTables)
			viewer.GET("/tables/:table_id", tableCtrl.GetTable)
			viewer.GET("/tables/:table_id/alerts/grouped", alertCtrl.GroupedAlerts)
		}

		// Writes answer with the role view when a role is sent
		writer := api.Group("")
		writer.Use(middlewares.OptionalStaffRole())
		{
			writer.PUT("/tables/:table_id", tableCtrl.UpsertTable)
			writer.PATCH("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
			writer.POST("/tables/:table_id/alerts", alertCtrl.AttachAlert)
			writer.DELETE("/tables/:table_id/alerts/:index", alertCtrl.DismissAlert)
		}

		// Advisory console
		api.GET("/console", advisoryCtrl.ConsoleState)
		api.DELETE("/console", advisoryCtrl.CloseConsole)
		api.POST("/console/select", advisoryCtrl.SelectTable)
		api.POST("/tables/:table_id/analysis", analysisLimiter.RateLimit(), advisoryCtrl.RequestAnalysis)
	}

	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.StaffRole())
	{
		wsGroup.GET("/floor", socketCtrl.FloorSocket)
	}

	return r
}
