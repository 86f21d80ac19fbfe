package router

import (
	"time"

	"scp/internal/config"
	"scp/internal/handler"
	"scp/internal/identity"
	"scp/internal/middleware"
	"scp/internal/repository"
	"scp/internal/service"
	"scp/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	convRepo := repository.NewConversationRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	assignmentSvc := service.NewAssignmentService(staffRepo, linkRepo, convRepo)
	linkSvc := service.NewLinkService(linkRepo, staffRepo, assignmentSvc, dispatcher)
	orderSvc := service.NewOrderService(orderRepo, productRepo, linkRepo, dispatcher)
	complaintSvc := service.NewComplaintService(complaintRepo, linkRepo, orderRepo, assignmentSvc, dispatcher)
	chatSvc := service.NewChatService(convRepo, linkRepo, assignmentSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	linksH := handler.NewLinksHandler(linkSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	complaintsH := handler.NewComplaintsHandler(complaintSvc)
	chatH := handler.NewChatHandler(chatSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
		auth.POST("/register", authH.Register)
	}

	// Protected routes: JWT first, then actor resolution
	resolver := identity.NewResolver(userRepo, staffRepo)
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), middleware.ResolveActor(resolver))
	{
		v1.GET("/auth/me", authH.Me)

		v1.GET("/suppliers", linksH.ListSuppliers)

		links := v1.Group("/links")
		{
			links.POST("", linksH.Request)
			links.GET("", linksH.List)
			links.GET("/:id", linksH.Get)
			links.POST("/:id/approve", linksH.Approve)
			links.POST("/:id/reject", linksH.Reject)
			links.POST("/:id/block", linksH.Block)
			links.POST("/:id/cancel", linksH.Cancel)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", ordersH.Create)
			orders.GET("", ordersH.List)
			orders.GET("/:id", ordersH.Get)
			orders.POST("/:id/confirm", ordersH.Confirm)
			orders.POST("/:id/reject", ordersH.Reject)
			orders.POST("/:id/cancel", ordersH.Cancel)
			orders.POST("/:id/dispatch", ordersH.Dispatch)
			orders.POST("/:id/complete", ordersH.Complete)
		}

		complaints := v1.Group("/complaints")
		{
			complaints.POST("", complaintsH.Create)
			complaints.GET("", complaintsH.List)
			complaints.GET("/:id", complaintsH.Get)
			complaints.POST("/:id/escalate", complaintsH.Escalate)
			complaints.PUT("/:id/status", complaintsH.UpdateStatus)
			complaints.POST("/:id/notes", complaintsH.AddNote)
			complaints.GET("/:id/notes", complaintsH.ListNotes)
		}

		conversations := v1.Group("/conversations")
		{
			conversations.POST("", chatH.CreateConversation)
			conversations.GET("", chatH.List)
			conversations.POST("/:id/messages", chatH.SendMessage)
			conversations.GET("/:id/messages", chatH.ListMessages)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
