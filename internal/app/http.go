package app

import (
	"context"
	"errors"
	"net/http"

	"tourneybase-web/internal/config"
	"tourneybase-web/internal/gateway"
	"tourneybase-web/internal/identity/provider"
	"tourneybase-web/internal/identity/provider/google"
	"tourneybase-web/internal/identity/provider/local"
	"tourneybase-web/internal/logger"
	"tourneybase-web/internal/middleware"
	"tourneybase-web/internal/session"
	"tourneybase-web/internal/views"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	bindings := session.NewRedisBindingStore(infra.Redis.Client)

	registry, err := setupProviders(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	manager := session.NewManager(
		gateway.Config{
			BaseURL: cfg.BackendBaseURL,
			Timeout: cfg.BackendTimeout,
		},
		registry,
		bindings,
		cfg.SessionTTL,
	)

	viewHandler := views.NewHandler(registry, manager)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})

	viewHandler.RegisterRoutes(router)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.Redis.Close()
	}, nil
}

// setupProviders configures every identity provider the environment has
// credentials for. At least one must come up.
func setupProviders(ctx context.Context, cfg config.Config) (*provider.Registry, error) {
	var list []provider.Provider

	if cfg.GoogleClientID != "" {
		googleProvider, err := google.New(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
		)
		if err != nil {
			return nil, err
		}
		list = append(list, googleProvider)
	}

	if cfg.LocalIssuerSecret != "" {
		localProvider, err := local.New(
			cfg.LocalIssuerSecret,
			"http://localhost:"+cfg.AppPort+"/oauth/callback/local",
		)
		if err != nil {
			return nil, err
		}
		list = append(list, localProvider)
		logger.Warn("local identity provider enabled", nil)
	}

	if len(list) == 0 {
		return nil, errors.New("no identity provider configured")
	}

	return provider.NewRegistry(list...), nil
}
