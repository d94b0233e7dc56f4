package server

import (
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/auth"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/location"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/roles"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/search"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/suggestion"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/user"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/middleware"
)

// SetupRouter configures the Gin router: middleware, domain services and
// all API routes.
func (s *Server) SetupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(otelgin.Middleware("co-creation-map"))
	r.Use(ginzap.GinzapWithConfig(s.logger, &ginzap.Config{
		UTC:        true,
		TimeFormat: time.RFC3339,
		Context:    zapContextFunc(),
	}))
	r.Use(ginzap.RecoveryWithZap(s.logger, true))
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SecurityMiddleware())

	// Repositories and services
	locationRepo := location.NewRepository(s.dbPool)
	locationSvc := location.NewService(locationRepo, s.fileStore, s.cfg.Storage, s.logger)

	suggestionRepo := suggestion.NewRepository(s.dbPool)
	suggestionSvc := suggestion.NewService(suggestionRepo, locationSvc, s.logger)

	searchSvc := search.NewService(search.NewPostgresProvider(s.dbPool), s.logger)

	userSvc := user.NewService(user.NewRepository(s.dbPool), s.logger)
	authSvc := auth.NewService(auth.NewRepository(s.dbPool), userSvc, s.cfg.Auth, s.logger)

	// Handlers
	locationH := location.NewHandlers(locationSvc, s.logger)
	suggestionH := suggestion.NewHandlers(suggestionSvc, s.logger)
	searchH := search.NewHandlers(searchSvc, s.logger)
	authH := auth.NewHandlers(authSvc, s.cfg.Auth.TokenExpiryHours*3600, s.logger)
	userH := user.NewHandlers(userSvc, s.logger)

	requireAuth := middleware.AuthMiddleware(authSvc, userSvc)
	optionalAuth := middleware.OptionalAuthMiddleware(authSvc, userSvc)

	api := r.Group("/api")
	{
		api.POST("/auth/register", authH.Register)
		api.POST("/auth/login", authH.Login)
		api.POST("/auth/logout", authH.Logout)
		api.POST("/auth/password", requireAuth, authH.ChangePassword)

		// Read endpoints are public; the map is open to anonymous viewers.
		api.GET("/locations", locationH.ListLocations)
		api.GET("/locations/:id", locationH.GetLocation)
		api.GET("/search", searchH.Search)

		// Direct mutations; the service enforces the editor role.
		api.POST("/locations", requireAuth, locationH.CreateLocation)
		api.PATCH("/locations/:id", requireAuth, locationH.UpdateLocation)
		api.DELETE("/locations/:id", requireAuth, locationH.DeleteLocation)

		api.POST("/suggestions", optionalAuth, suggestionH.ProposeSuggestion)
		api.GET("/suggestions/mine", requireAuth, suggestionH.ListMySuggestions)

		moderators := api.Group("", requireAuth, middleware.RequireRole(roles.RoleAdmin))
		{
			moderators.GET("/suggestions", suggestionH.ListSuggestions)
			moderators.GET("/suggestions/pending-count", suggestionH.PendingCount)
			moderators.POST("/suggestions/:id/approve", suggestionH.ApproveSuggestion)
			moderators.POST("/suggestions/:id/reject", suggestionH.RejectSuggestion)
			moderators.POST("/suggestions/:id/apply", suggestionH.ApplySuggestion)

			moderators.GET("/users", userH.ListUsers)
			moderators.GET("/users/role-stats", userH.RoleStats)
			moderators.POST("/admin/reset", locationH.ResetLocations)
		}

		superadmins := api.Group("", requireAuth, middleware.RequireRole(roles.RoleSuperadmin))
		{
			superadmins.DELETE("/suggestions/:id", suggestionH.PurgeSuggestion)
			superadmins.PUT("/users/:id/role", userH.UpdateRole)
		}

		api.GET("/users/me", requireAuth, userH.GetMe)
		api.PATCH("/users/me", requireAuth, userH.UpdateMe)
	}

	return r
}

// zapContextFunc returns the Zap context function for request logging
func zapContextFunc() ginzap.Fn {
	return func(c *gin.Context) []zapcore.Field {
		fields := []zapcore.Field{}

		if requestID := c.Writer.Header().Get("X-Request-Id"); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}

		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			fields = append(fields,
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.String("span_id", span.SpanContext().SpanID().String()),
			)
		}

		return fields
	}
}
