package api

import (
	"academic_records/internal/api/handler"
	"academic_records/internal/api/middleware"
	"academic_records/internal/app/service"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Services struct {
	Auth        *service.AuthService
	Users       *service.UserService
	Students    *service.StudentService
	Professors  *service.ProfessorService
	Disciplines *service.DisciplineService
	Classes     *service.ClassService
	Enrollments *service.EnrollmentService
	Grades      *service.GradeService
}

// CORSOptions allows the given browser origins to call the API with bearer tokens.
func CORSOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"WWW-Authenticate", "X-Request-Id"},
		MaxAge:         300,
	}
}

func NewRouter(
	services Services,
	resolver *middleware.Resolver,
	log *zap.Logger,
	corsOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(CORSOptions(corsOrigins)))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes. The resolver only attaches identity; every service decides access.
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(resolver.Middleware)

		v1.Route("/auth", handler.NewAuthHandler(services.Auth).RegisterRoutes)
		v1.Route("/users", handler.NewUserHandler(services.Users).RegisterRoutes)
		v1.Route("/students", handler.NewStudentHandler(services.Students).RegisterRoutes)
		v1.Route("/professors", handler.NewProfessorHandler(services.Professors).RegisterRoutes)
		v1.Route("/disciplines", handler.NewDisciplineHandler(services.Disciplines).RegisterRoutes)
		v1.Route("/classes", handler.NewClassHandler(services.Classes).RegisterRoutes)
		v1.Route("/enrollments", handler.NewEnrollmentHandler(services.Enrollments).RegisterRoutes)
		v1.Route("/grades", handler.NewGradeHandler(services.Grades).RegisterRoutes)
	})

	return r
}
