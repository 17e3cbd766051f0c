package main

import (
	"log"
	"net/http"
	"time"

	"tenantadmin-backend/admin-service/handlers"
	"tenantadmin-backend/admin-service/middleware"
	"tenantadmin-backend/shared/clients"
	"tenantadmin-backend/shared/config"
	"tenantadmin-backend/shared/database"
	"tenantadmin-backend/shared/utils/cache"

	_ "tenantadmin-backend/docs/swagger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title TenantAdmin API
// @version 1.0
// @description Multi-tenant administration backend: users, companies, groups, roles and row-level permissions

// @contact.name API Support

// @host localhost:3000
// @BasePath /api/v1
// @schemes http https

// @tag.name users
// @tag.description Registration, login, invites and user management

// @tag.name companies
// @tag.description Company management and tenant switching

// @tag.name roles
// @tag.description Role management and permission grids

// @tag.name permissions
// @tag.description Permission resolution and grants

// @tag.name groups
// @tag.description Group management

// @tag.name categories
// @tag.description Category management

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Seed the admin service, its features and the system Admin role
	if err := database.SeedDatabase(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	// Initialize Redis-backed permission matrix cache; the resolver falls
	// back to the database when the cache is unavailable
	if err := cache.InitCacheManager(); err != nil {
		log.Printf("⚠️ Redis unavailable, permission cache disabled: %v", err)
	}

	// Initialize credential service client
	clients.InitCredentialClient(cfg.CredentialAPI)
	credentials := clients.GetCredentialClient()

	db := database.GetDB()

	userHandler := handlers.NewUserHandler(db, credentials)
	companyHandler := handlers.NewCompanyHandler(db, credentials)
	roleHandler := handlers.NewRoleHandler(db)
	permissionHandler := handlers.NewPermissionHandler(db)
	groupHandler := handlers.NewGroupHandler(db)
	categoryHandler := handlers.NewCategoryHandler(db)

	// Rate limiter for the public auth endpoints
	rateLimiter := middleware.NewRateLimiter(5 * time.Minute)
	loginRateConfig := middleware.RateLimitConfig{
		MaxRequests:   cfg.GetLoginRateLimitMaxAttempts(),
		TimeWindow:    time.Duration(cfg.GetLoginRateLimitWindowSeconds()) * time.Second,
		BlockDuration: time.Duration(cfg.GetLoginRateLimitBlockMinutes()) * time.Minute,
	}
	registerRateConfig := middleware.RateLimitConfig{
		MaxRequests:   cfg.GetRegisterRateLimitMaxAttempts(),
		TimeWindow:    time.Duration(cfg.GetRegisterRateLimitWindowHours()) * time.Hour,
		BlockDuration: time.Duration(cfg.GetRegisterRateLimitBlockHours()) * time.Hour,
	}

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	api := router.Group("/api/v1")

	// Public routes
	api.POST("/users/register",
		rateLimiter.RegistrationRateLimitMiddleware(registerRateConfig),
		userHandler.Register)
	api.POST("/users/login",
		rateLimiter.LoginRateLimitMiddleware(loginRateConfig),
		userHandler.Login)

	// Everything below requires a verified credential
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware())

	// User routes
	authed.GET("/users/profile", userHandler.GetProfile)
	authed.PATCH("/users",
		middleware.CompanyGuard(),
		middleware.RequirePermission("users.list"),
		userHandler.ListUsers)
	authed.POST("/users/invite",
		middleware.RequirePermission("users.invite"),
		userHandler.InviteUser)
	authed.GET("/users/invite",
		middleware.RequirePermission("users.invite-list"),
		userHandler.ListInvites)
	authed.PATCH("/users/invite/:uuid",
		middleware.RequirePermission("users.invite-activate"),
		userHandler.ActivateInvite)
	authed.DELETE("/users/:uuid",
		middleware.CompanyGuard(),
		middleware.RequirePermission("users.delete"),
		userHandler.DeleteUser)

	// Company routes
	authed.POST("/companies", companyHandler.CreateCompany)
	authed.GET("/companies", companyHandler.ListMyCompanies)
	authed.GET("/companies/is-active", companyHandler.IsActive)
	authed.PATCH("/companies/switch/:uuid", companyHandler.SwitchCompany)
	authed.PUT("/companies",
		middleware.CompanyGuard(),
		middleware.RequirePermission("company.update"),
		companyHandler.UpdateCompany)
	authed.DELETE("/companies",
		middleware.CompanyGuard(),
		middleware.RequirePermission("company.delete"),
		companyHandler.DeleteCompany)

	// Service catalogue routes
	authed.GET("/services", companyHandler.ListServices)
	authed.GET("/services/:uuid/features", companyHandler.ListFeatures)

	// Role routes
	authed.POST("/roles",
		middleware.CompanyGuard(),
		middleware.RequirePermission("roles.create"),
		roleHandler.CreateRole)
	authed.GET("/roles/system",
		middleware.CompanyGuard(),
		middleware.RequirePermission("roles.list"),
		roleHandler.ListSystemRoles)
	authed.GET("/roles/company",
		middleware.CompanyGuard(),
		middleware.RequirePermission("roles.list"),
		roleHandler.ListCompanyRoles)
	authed.PATCH("/roles/assign",
		middleware.CompanyGuard(),
		middleware.RequirePermission("roles.assign"),
		roleHandler.AssignRole)
	authed.GET("/roles/:uuid/permissions",
		middleware.CompanyGuard(),
		middleware.RequirePermission("roles.permission-grid"),
		roleHandler.GetPermissionGrid)
	authed.PATCH("/roles/permissions",
		middleware.CompanyGuard(),
		middleware.RequirePermission("roles.update-permission"),
		roleHandler.UpdatePermissions)

	// Permission routes
	authed.POST("/permissions",
		middleware.CompanyGuard(),
		middleware.RequirePermission("permissions.create"),
		permissionHandler.CreatePermission)
	authed.PATCH("/permissions", permissionHandler.ResolveOwn)
	authed.GET("/permissions/user", permissionHandler.GetUserPermissions)

	// Group routes
	authed.POST("/groups",
		middleware.CompanyGuard(),
		middleware.RequirePermission("groups.create"),
		groupHandler.CreateGroup)
	authed.GET("/groups",
		middleware.CompanyGuard(),
		middleware.RequirePermission("groups.list"),
		groupHandler.ListGroups)
	authed.GET("/groups/:uuid/users",
		middleware.CompanyGuard(),
		middleware.RequirePermission("groups.members"),
		groupHandler.ListGroupMembers)
	authed.GET("/groups/:uuid/users/available",
		middleware.CompanyGuard(),
		middleware.RequirePermission("groups.members"),
		groupHandler.ListUsersNotInGroup)
	authed.PUT("/groups/:uuid",
		middleware.CompanyGuard(),
		middleware.RequirePermission("groups.update"),
		groupHandler.UpdateGroup)
	authed.DELETE("/groups/:uuid",
		middleware.CompanyGuard(),
		middleware.RequirePermission("groups.delete"),
		groupHandler.DeleteGroup)
	authed.POST("/groups/:uuid/users",
		middleware.CompanyGuard(),
		middleware.RequirePermission("groups.add-user"),
		groupHandler.AddUserToGroup)

	// Category routes
	authed.POST("/categories",
		middleware.CompanyGuard(),
		middleware.RequirePermission("category.create"),
		categoryHandler.CreateCategory)
	authed.GET("/categories",
		middleware.CompanyGuard(),
		middleware.RequirePermission("category.list"),
		categoryHandler.ListCategories)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "admin",
		})
	})

	// Swagger documentation UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	log.Printf("Admin Service starting on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
