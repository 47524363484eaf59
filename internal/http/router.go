package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Tracker)
	statsController := NewStatisticsController(cfg.Tracker)
	transfer := NewTransferController(cfg.Tracker, cfg.TaskQueue, cfg.ExportPrefix, cfg.ImportDir)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	// Books API endpoints
	api.GET("/books", booksController.GetAllBooks)
	api.GET("/books/:id", booksController.GetBook)
	api.POST("/books", booksController.CreateBook)
	api.PATCH("/books/:id/progress", booksController.UpdateProgress)
	api.PUT("/books/:id", booksController.UpdateDetails)
	api.DELETE("/books/:id", booksController.DeleteBook)

	api.GET("/statistics", statsController.GetStatistics)

	// Snapshot transfer endpoints
	api.POST("/export", transfer.Export)
	api.GET("/export/download", transfer.Download)
	api.POST("/import", transfer.Import)
	api.POST("/import/file", transfer.ImportFile)
	api.POST("/reset", transfer.Reset)
	api.GET("/tasks/:id", transfer.TaskStatus)

	return router
}
