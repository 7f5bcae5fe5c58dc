package router

import (
	"time"

	"budget/api"
	"budget/config"
	_ "budget/docs"
	"budget/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(10, time.Minute), authHandler.Login)

			// 密码重置（验证码邮件）
			auth.POST("/password/request-reset", authHandler.RequestPasswordReset)
			auth.POST("/password/reset", authHandler.ResetPassword)
		}

		// 交易类别（无需登录）
		transactionHandler := api.NewTransactionHandler()
		v1.GET("/categories", transactionHandler.GetCategories)

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// 用户相关
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			// 交易记录相关
			transactions := authorized.Group("/transactions")
			{
				transactions.POST("", transactionHandler.Create)
				transactions.GET("", transactionHandler.List)
				transactions.GET("/statistics", transactionHandler.GetMonthStatistics)
				transactions.GET("/:id", transactionHandler.Get)
				transactions.PUT("/:id", transactionHandler.Update)
				transactions.DELETE("/:id", transactionHandler.Delete)
			}

			// 预算相关
			budgetHandler := api.NewBudgetHandler()
			budgets := authorized.Group("/budgets")
			{
				budgets.PUT("/total", budgetHandler.SetTotalBudget)
				budgets.GET("/total", budgetHandler.GetTotalBudget)
				budgets.POST("/categories", budgetHandler.CreateCategoryBudget)
				budgets.GET("/categories", budgetHandler.ListCategoryBudgets)
				budgets.PUT("/categories/:id", budgetHandler.UpdateCategoryBudget)
				budgets.DELETE("/categories/:id", budgetHandler.DeleteCategoryBudget)
			}

			// 目标相关（annual/savings）
			goalHandler := api.NewGoalHandler()
			contributionHandler := api.NewContributionHandler()
			goals := authorized.Group("/goals/:model")
			{
				goals.POST("", goalHandler.Create)
				goals.GET("", goalHandler.List)
				goals.GET("/:id", goalHandler.Get)
				goals.DELETE("/:id", goalHandler.Delete)
				goals.POST("/:id/add-funds", goalHandler.AddFunds)
				goals.GET("/:id/contributions", contributionHandler.ListByGoal)
			}

			// 工资转入
			authorized.POST("/contributions", contributionHandler.Create)

			// 统计相关
			summaryHandler := api.NewSummaryHandler()
			statistics := authorized.Group("/statistics")
			{
				statistics.GET("/income", summaryHandler.GetIncomeSummary)
				statistics.GET("/has-income", summaryHandler.HasCurrentMonthIncome)
				statistics.GET("/overview", summaryHandler.GetMonthOverview)
			}

			// 导出相关
			exportHandler := api.NewExportHandler()
			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/excel", exportHandler.ExportExcel)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
