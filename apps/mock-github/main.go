package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tilsley/repocat/pkg/logging"
	"github.com/tilsley/repocat/pkg/mockgithub"
)

// mock-github serves a seeded contents API for local repocat runs:
//
//	go run ./apps/mock-github &
//	go run ./apps/repocat acme/widgets --api-url http://localhost:9090 --raw-url http://localhost:9090/raw
func main() {
	log := logging.New()
	port := envOr("PORT", "9090")

	s := mockgithub.NewStore()
	mockgithub.Seed(s)
	log.Info("seeded repos", "repos", []string{"acme/widgets", "acme/legacy"})

	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := mockgithub.NewRouter(s, log, otelgin.Middleware("mock-github"))

	log.Info("mock-github starting", "port", port)
	if err := r.Run(":" + port); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
