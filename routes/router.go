package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/whpcodes/whpcodes/config"
	"github.com/whpcodes/whpcodes/controllers"
	"github.com/whpcodes/whpcodes/middleware"
	"github.com/whpcodes/whpcodes/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Client-Fingerprint"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Record PV after each request
	r.Use(middleware.PageViewRecorder(db))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	whopController := controllers.NewWhopController(db)
	promoController := controllers.NewPromoController(db)
	blogController := controllers.NewBlogController(db)
	commentController := controllers.NewCommentController(db)
	reviewController := controllers.NewReviewController(db)
	mailingController := controllers.NewMailingController(db)
	contactController := controllers.NewContactController(db)
	seoController := controllers.NewSEOController(db)
	statsController := controllers.NewStatsController(db)

	// Crawler surface
	r.GET("/sitemap.xml", seoController.SitemapIndex)
	r.GET("/sitemaps/:page", seoController.SitemapPage)
	r.GET("/robots.txt", seoController.Robots)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Public read surface
	whopsGroup := api.Group("/whops")
	whopsGroup.GET("", whopController.ListWhops)
	whopsGroup.GET("/:slug", middleware.RetirementGuard(db), whopController.GetWhop)
	whopsGroup.GET("/:slug/alternatives", whopController.ListAlternatives)
	whopsGroup.GET("/:slug/reviews", reviewController.ListReviews)

	api.GET("/categories", whopController.ListCategories)
	api.GET("/blog", blogController.ListPosts)
	api.GET("/blog/:slug", blogController.GetPost)
	api.GET("/comments", commentController.ListComments)
	api.GET("/captcha", contactController.Captcha)
	api.GET("/stats", statsController.GetStats)
	api.GET("/mailing/confirm", mailingController.Confirm)
	api.GET("/mailing/unsubscribe", mailingController.Unsubscribe)

	// Public write surface, rate limited
	publicWrite := api.Group("")
	publicWrite.Use(middleware.RateLimitMiddleware())
	publicWrite.POST("/whops/:slug/codes/:id/reveal", promoController.RevealCode)
	publicWrite.POST("/whops/:slug/reviews", reviewController.CreateReview)
	publicWrite.POST("/comments", commentController.CreateComment)
	publicWrite.POST("/comments/:id/vote", commentController.VoteComment)
	publicWrite.POST("/submissions", promoController.SubmitCode)
	publicWrite.POST("/mailing/subscribe", mailingController.Subscribe)
	publicWrite.POST("/contact", contactController.SubmitContact)

	// Admin back office
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.RateLimitMiddleware())

	admin.GET("/whops", whopController.AdminListWhops)
	admin.POST("/whops", whopController.CreateWhop)
	admin.PUT("/whops/:id", whopController.UpdateWhop)
	admin.DELETE("/whops/:id", whopController.DeleteWhop)
	admin.PUT("/whops/:id/seo", seoController.UpdateSEO)

	admin.GET("/codes", promoController.ListCodes)
	admin.POST("/codes", promoController.CreateCode)
	admin.PUT("/codes/:id", promoController.UpdateCode)
	admin.DELETE("/codes/:id", promoController.DeleteCode)
	admin.POST("/codes/import", promoController.ImportCodes)

	admin.GET("/submissions", promoController.ListSubmissions)
	admin.POST("/submissions/:id/review", promoController.ReviewSubmission)

	admin.GET("/blog", blogController.AdminListPosts)
	admin.POST("/blog", blogController.CreatePost)
	admin.PUT("/blog/:id", blogController.UpdatePost)
	admin.DELETE("/blog/:id", blogController.DeletePost)

	admin.GET("/comments", commentController.ListPendingComments)
	admin.POST("/comments/:id/moderate", commentController.ModerateComment)
	admin.DELETE("/comments/:id", commentController.DeleteComment)

	admin.GET("/reviews", reviewController.ListPendingReviews)
	admin.POST("/reviews/:id/moderate", reviewController.ModerateReview)

	admin.GET("/subscribers", mailingController.ListSubscribers)
	admin.GET("/subscribers/export", mailingController.ExportSubscribers)

	admin.GET("/contact", contactController.ListMessages)
	admin.PUT("/contact/:id", contactController.MarkHandled)

	admin.GET("/users", authController.ListUsers)
	admin.POST("/users", authController.CreateUser)
	admin.GET("/stats", statsController.GetAdminStats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
