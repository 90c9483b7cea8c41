package main

import (
	"log"

	"github.com/emploai/emploai-server/internal/config"
	"github.com/emploai/emploai-server/internal/database"
	"github.com/emploai/emploai-server/internal/handlers"
	"github.com/emploai/emploai-server/internal/llm"
	"github.com/emploai/emploai-server/internal/logger"
	"github.com/emploai/emploai-server/internal/middleware"
	"github.com/emploai/emploai-server/internal/prompts"
	"github.com/emploai/emploai-server/internal/realtime"
	"github.com/emploai/emploai-server/internal/repository"
	"github.com/emploai/emploai-server/internal/services"
	"github.com/emploai/emploai-server/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFile)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Object storage for attachments and company documents
	store, err := storage.New(cfg.StorageRoot, cfg.SelfBaseURL, []byte(cfg.StorageSecret))
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	sessionStore, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions("emploai_session", sessionStore))

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	convRepo := repository.NewConversationRepository(db)
	memoryRepo := repository.NewMemoryRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	templateRepo := repository.NewChainTemplateRepository(db)

	// Services
	hub := realtime.NewHub()
	auditService := services.NewAuditService(auditRepo)
	authService := services.NewAuthService(userRepo)
	employeeService := services.NewEmployeeService(employeeRepo, taskRepo, auditService)
	taskService := services.NewTaskService(taskRepo, employeeRepo, hub, auditService)
	companyService := services.NewCompanyService(companyRepo, store, auditService)
	chatService := services.NewChatService(convRepo, employeeRepo, memoryRepo, companyRepo, userRepo,
		llm.NewClient(cfg.SelfBaseURL))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService, memoryRepo)
	taskHandler := handlers.NewTaskHandler(taskService, employeeService, hub)
	chatHandler := handlers.NewChatHandler(chatService, employeeService, convRepo, store)
	companyHandler := handlers.NewCompanyHandler(companyService)
	groupHandler := handlers.NewGroupHandler(groupRepo, employeeService)
	supervisorHandler := handlers.NewSupervisorHandler(templateRepo)
	fileHandler := handlers.NewFileHandler(store)
	gatewayHandler := handlers.NewGatewayHandler(prompts.Default(),
		cfg.GatewayBaseURL, cfg.GatewayAPIKey, cfg.OpenAIAPIKey, auditService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "EmploAI server is running",
		})
	})

	// Gateway routes (no session; standalone function-style endpoints)
	r.POST("/chat", gatewayHandler.Chat)
	r.POST("/openai", gatewayHandler.OpenAI)
	r.POST("/audit", gatewayHandler.Audit)
	r.GET("/events", gatewayHandler.Events)

	// Signed file downloads (signature is the authorization)
	r.GET("/files/*path", fileHandler.Download)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			auth.PATCH("/provider", middleware.RequireAuth(), authHandler.UpdateProvider)
		}

		// Employee routes (protected)
		employees := api.Group("/employees")
		employees.Use(middleware.RequireAuth())
		{
			employees.POST("", employeeHandler.CreateEmployee)
			employees.GET("", employeeHandler.ListEmployees)
			employees.GET("/manager", employeeHandler.GetManager)
			employees.GET("/:id", employeeHandler.GetEmployee)
			employees.DELETE("/:id", employeeHandler.DeleteEmployee)
			employees.GET("/:id/memory", employeeHandler.ListMemory)
			employees.POST("/:id/memory", employeeHandler.AddMemory)
			employees.DELETE("/:id/memory/:memoryId", employeeHandler.DeleteMemory)
			employees.POST("/:id/chat", chatHandler.SendMessage)
			employees.GET("/:id/conversation", chatHandler.GetConversation)
			employees.POST("/:id/attachments", chatHandler.UploadAttachment)
			employees.GET("/:id/attachments", chatHandler.ListAttachments)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/suggest-assignee", taskHandler.SuggestAssignee)
			tasks.GET("/board", taskHandler.GetBoard)
			tasks.GET("/board/stream", taskHandler.StreamBoard)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.POST("/:id/verify", taskHandler.VerifyTask)
		}

		// Group routes (protected)
		groups := api.Group("/groups")
		groups.Use(middleware.RequireAuth())
		{
			groups.POST("", groupHandler.CreateGroup)
			groups.GET("", groupHandler.ListGroups)
			groups.DELETE("/:id", groupHandler.DeleteGroup)
			groups.POST("/:id/members", groupHandler.AddMember)
			groups.DELETE("/:id/members/:employeeId", groupHandler.RemoveMember)
		}

		// Company profile routes (protected)
		company := api.Group("/company")
		company.Use(middleware.RequireAuth())
		{
			company.GET("", companyHandler.GetCompany)
			company.PUT("", companyHandler.UpdateCompany)
			company.POST("/documents", companyHandler.UploadDocument)
			company.POST("/documents/url", companyHandler.GetDocumentURL)
		}

		// Dashboard insights (protected)
		api.GET("/insights", middleware.RequireAuth(), employeeHandler.GetInsights)

		// Supervisor routes (role gated)
		supervisor := api.Group("/supervisor")
		supervisor.Use(middleware.RequireAuth(), middleware.RequireSupervisor())
		{
			supervisor.POST("/chain-templates", supervisorHandler.CreateChainTemplate)
			supervisor.GET("/chain-templates", supervisorHandler.ListChainTemplates)
		}
	}

	// Start server
	logger.Info("server starting", "addr", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
