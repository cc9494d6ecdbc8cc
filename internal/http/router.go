package http

import (
	"log/slog"
	"net/http"

	"github.com/jaekwang-park/taskboard-api/internal/http/handler"
	"github.com/jaekwang-park/taskboard-api/internal/middleware"
	"github.com/jaekwang-park/taskboard-api/internal/service"
)

type Deps struct {
	Auth  *service.AuthService
	Tasks *service.TaskService
	Users *service.UserService

	// Guard authenticates every route except /health and /api/v1/auth/.
	Guard *middleware.Auth
	// LoginLimiter throttles login per client IP. Nil disables it.
	LoginLimiter middleware.Limiter
	Logger       *slog.Logger
}

func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	// Health check - intentionally outside /api/v1 for ALB health check compatibility
	mux.Handle("/health", handler.NewHealthHandler())

	authHandler := handler.NewAuthHandler(deps.Auth)
	var login http.Handler = http.HandlerFunc(authHandler.Login)
	if deps.LoginLimiter != nil {
		login = middleware.RateLimit(deps.LoginLimiter, logger)(login)
	}
	mux.Handle("POST /api/v1/auth/login", login)
	mux.HandleFunc("POST /api/v1/auth/signup", authHandler.Signup)

	tasks := handler.NewTaskHandler(deps.Tasks)
	mux.HandleFunc("GET /api/v1/tasks", tasks.List)
	mux.HandleFunc("POST /api/v1/tasks", tasks.Create)
	mux.HandleFunc("GET /api/v1/tasks/{id}", tasks.Get)
	mux.HandleFunc("PUT /api/v1/tasks/{id}", tasks.Update)
	mux.HandleFunc("DELETE /api/v1/tasks/{id}", tasks.Delete)

	users := handler.NewUserHandler(deps.Users)
	admin := middleware.RequireAdmin(logger)
	mux.HandleFunc("GET /api/v1/users", users.List)
	mux.Handle("POST /api/v1/users", admin(http.HandlerFunc(users.Create)))
	mux.Handle("GET /api/v1/users/{id}", admin(http.HandlerFunc(users.Get)))
	mux.Handle("PUT /api/v1/users/{id}", admin(http.HandlerFunc(users.Edit)))
	mux.Handle("DELETE /api/v1/users/{id}", admin(http.HandlerFunc(users.Delete)))

	return deps.Guard.Middleware(mux)
}
