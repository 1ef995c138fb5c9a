package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	usermodel "library-backend/internal/domains/user/model"
	"library-backend/internal/shared/middleware"
	"library-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
		middleware.ClientIPMiddleware(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupCatalogRoutes(v1, c)
		setupBorrowingRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
		auth.POST("/refresh", c.UserHandler.Refresh)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		users.GET("/me", c.UserHandler.Profile)
		users.PUT("/me", c.UserHandler.UpdateProfile)
		users.PUT("/me/password", c.UserHandler.ChangePassword)
	}
}

// ========================================
// CATALOG ROUTES
// ========================================
// Reads are public; every mutation needs the manage-catalog permission.
func setupCatalogRoutes(v1 *gin.RouterGroup, c *container.Container) {
	manage := []gin.HandlerFunc{
		middleware.AuthMiddleware(c.JWTManager),
		middleware.RequirePermission(usermodel.PermManageCatalog),
	}

	books := v1.Group("/books")
	{
		books.GET("", c.CatalogHandler.SearchBooks)
		books.GET("/:id", c.CatalogHandler.GetBook)
		books.POST("", append(manage, c.CatalogHandler.CreateBook)...)
		books.PUT("/:id", append(manage, c.CatalogHandler.UpdateBook)...)
		books.DELETE("/:id", append(manage, c.CatalogHandler.DeleteBook)...)
	}

	authors := v1.Group("/authors")
	{
		authors.GET("", c.CatalogHandler.ListAuthors)
		authors.GET("/:id", c.CatalogHandler.GetAuthor)
		authors.POST("", append(manage, c.CatalogHandler.CreateAuthor)...)
		authors.PUT("/:id", append(manage, c.CatalogHandler.UpdateAuthor)...)
		authors.DELETE("/:id", append(manage, c.CatalogHandler.DeleteAuthor)...)
	}

	genres := v1.Group("/genres")
	{
		genres.GET("", c.CatalogHandler.ListGenres)
		genres.GET("/:id", c.CatalogHandler.GetGenre)
		genres.POST("", append(manage, c.CatalogHandler.CreateGenre)...)
		genres.PUT("/:id", append(manage, c.CatalogHandler.UpdateGenre)...)
		genres.DELETE("/:id", append(manage, c.CatalogHandler.DeleteGenre)...)
	}
}

// ========================================
// BORROWING ROUTES
// ========================================
func setupBorrowingRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := middleware.AuthMiddleware(c.JWTManager)

	requests := v1.Group("/requests")
	requests.Use(auth)
	{
		requests.POST("", middleware.RequirePermission(usermodel.PermRequestBook), c.BorrowingHandler.RequestBook)
		requests.GET("/my", c.BorrowingHandler.MyRequests)
		requests.GET("", middleware.RequirePermission(usermodel.PermApproveRequests), c.BorrowingHandler.ListRequests)
		requests.POST("/:id/approve", middleware.RequirePermission(usermodel.PermApproveRequests), c.BorrowingHandler.ApproveRequest)
		requests.POST("/:id/reject", middleware.RequirePermission(usermodel.PermApproveRequests), c.BorrowingHandler.RejectRequest)
		requests.POST("/:id/borrow", middleware.RequirePermission(usermodel.PermBorrowSelf), c.BorrowingHandler.BorrowApproved)
	}

	loans := v1.Group("/loans")
	loans.Use(auth)
	{
		loans.POST("", middleware.RequirePermission(usermodel.PermBorrowAssisted), c.BorrowingHandler.BorrowDirect)
		loans.GET("/my", c.BorrowingHandler.MyLoans)
		loans.GET("/active", middleware.RequirePermission(usermodel.PermViewActiveLoans), c.BorrowingHandler.ActiveLoans)
		loans.POST("/:id/return", c.BorrowingHandler.ReturnLoan)
		loans.POST("/:id/renew", middleware.RequirePermission(usermodel.PermRenewOwn), c.BorrowingHandler.RenewLoan)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := middleware.AuthMiddleware(c.JWTManager)

	adminUsers := v1.Group("/admin/users")
	adminUsers.Use(auth, middleware.RequirePermission(usermodel.PermManageUsers))
	{
		adminUsers.GET("", c.UserHandler.ListUsers)
		adminUsers.PUT("/:id/role", c.UserHandler.ChangeRole)
	}

	reports := v1.Group("/admin/reports")
	reports.Use(auth, middleware.RequirePermission(usermodel.PermViewReports))
	{
		reports.GET("/activity", c.ReportHandler.ActivityReport)
		reports.GET("/top-books", c.ReportHandler.TopBooksReport)
		reports.GET("/overdue", c.ReportHandler.OverdueReport)
	}

	auditLogs := v1.Group("/admin/audit-logs")
	auditLogs.Use(auth, middleware.RequirePermission(usermodel.PermViewReports))
	{
		auditLogs.GET("", c.ReportHandler.ListLogs)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
