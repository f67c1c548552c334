package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/perchard/trustbind/internal/handlers"
	"github.com/perchard/trustbind/internal/middleware"
	"github.com/perchard/trustbind/internal/services"
	"github.com/perchard/trustbind/internal/signing"
)

// Deps bundles the long-lived services the router wires into handlers.
type Deps struct {
	DB         *gorm.DB
	Invites    *services.InviteTokenService
	Accounts   *services.AccountService
	Sessions   *services.ValidationSessionService
	Binder     *services.BindService
	Notifier   *services.InviteNotifier
	Key        *signing.Key
	ServerName string
}

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(deps Deps) (*gin.Engine, error) {
	switch {
	case deps.DB == nil:
		return nil, fmt.Errorf("database handle must be provided")
	case deps.Invites == nil:
		return nil, fmt.Errorf("invite token service must be provided")
	case deps.Accounts == nil:
		return nil, fmt.Errorf("account service must be provided")
	case deps.Sessions == nil:
		return nil, fmt.Errorf("validation session service must be provided")
	case deps.Binder == nil:
		return nil, fmt.Errorf("bind service must be provided")
	case deps.Notifier == nil:
		return nil, fmt.Errorf("invite notifier must be provided")
	case deps.Key == nil:
		return nil, fmt.Errorf("signing key must be provided")
	case deps.ServerName == "":
		return nil, fmt.Errorf("server name must be provided")
	}

	r := gin.New()

	// Global middleware. CORS answers OPTIONS preflights for every route.
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimit(100, time.Minute))

	// Health endpoint (public)
	r.GET("/health", handlers.Health(deps.DB))

	inviteHandler := handlers.NewInviteHandler(deps.Invites, deps.Notifier, deps.Key, deps.ServerName)
	bindHandler := handlers.NewBindHandler(deps.Sessions, deps.Binder)
	lookupHandler := handlers.NewLookupHandler(deps.Invites)
	pubkeyHandler := handlers.NewPubkeyHandler(deps.Key)

	requireAuth := middleware.Auth(deps.Accounts)

	identity := r.Group("/_matrix/identity/v2")
	{
		// Mutating endpoints require a bearer token.
		identity.POST("/store-invite", requireAuth, inviteHandler.Create)
		identity.POST("/3pid/bind", requireAuth, bindHandler.Bind)

		// Lookup and key endpoints are publicly invocable.
		identity.GET("/tokeninfo", lookupHandler.TokenInfo)
		identity.GET("/tokensbyaddress", lookupHandler.TokensByAddress)
		// Gin's route tree cannot mix the static "isvalid" segment with the
		// :keyID parameter, so both are served from one route.
		identity.GET("/pubkey/:keyID", func(c *gin.Context) {
			if c.Param("keyID") == "isvalid" {
				pubkeyHandler.IsValid(c)
				return
			}
			pubkeyHandler.GetKey(c)
		})
	}

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
