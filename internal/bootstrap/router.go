package bootstrap

import (
	"log"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/planmark/review-backend/internal/api/http"
	"github.com/planmark/review-backend/internal/api/http/middleware"
	"github.com/planmark/review-backend/internal/auth"
	"github.com/planmark/review-backend/internal/files"
	reviewhttp "github.com/planmark/review-backend/internal/review/http"
	"github.com/planmark/review-backend/internal/review/repository"
	"github.com/planmark/review-backend/internal/review/session"
	"github.com/planmark/review-backend/internal/review/store"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *pgxpool.Pool
	Redis       *redis.Client
	Files       files.Store
	// AuthClient nil → dev header auth.
	AuthClient *firebaseauth.Client
	RateLimit  float64
	RateBurst  int
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.RequestIDMiddleware())
	if dep.RateLimit > 0 {
		api.Use(middleware.RateLimitMiddleware(dep.RateLimit, dep.RateBurst))
	}

	if dep.AuthClient != nil {
		api.Use(auth.Middleware(dep.AuthClient))
	} else {
		log.Println("[bootstrap] no Firebase credentials, using dev header auth")
		api.Use(auth.DevMiddleware())
	}

	repo := repository.NewPostgres(dep.DB)
	st := store.New(repo)
	sessions := session.NewManager(dep.Redis)

	handler := reviewhttp.New(st, sessions, dep.Files)
	handler.Register(api)

	return r
}
