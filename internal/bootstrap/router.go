package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httpapi "github.com/localink/localink-backend/internal/api/http"
	"github.com/localink/localink-backend/internal/api/http/middleware"
	"github.com/localink/localink-backend/internal/api/http/routes"
	"github.com/localink/localink-backend/internal/chat"
	onboardinghttp "github.com/localink/localink-backend/internal/onboarding/http"
	relayhttp "github.com/localink/localink-backend/internal/relay/http"
	"github.com/localink/localink-backend/internal/relay/repository"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Logger      *zap.Logger
	DB          *pgxpool.Pool
	Redis       *redis.Client

	RelayStore   repository.Store
	RelayOptions relayhttp.Options

	// Auth guards /api/v1. It must leave an actor in the context or abort.
	Auth       gin.HandlerFunc
	Onboarding *onboardinghttp.Handler
	Chat       *chat.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Logger))
	r.Use(cors.New(corsConfig()))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	relayhttp.NewBusinessHandler(dep.RelayStore, dep.RelayOptions).Register(r, relayhttp.BusinessPath)
	relayhttp.NewConsumerHandler(dep.RelayStore, dep.RelayOptions).Register(r, relayhttp.ConsumerPath)

	routes.RegisterV1(r, routes.V1Deps{
		Auth:       dep.Auth,
		Onboarding: dep.Onboarding,
		Chat:       dep.Chat,
	})

	return r
}

// corsConfig mirrors the headers the relay endpoints send themselves, so
// browser preflights get the same answer on every route.
func corsConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:              []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type", "X-User-Id", "X-User-Email", "X-Request-Id"},
		ExposeHeaders:             []string{"X-Request-Id"},
		OptionsResponseStatusCode: 200,
	}
}
