package http

import (
	"net/http"

	_ "github.com/DRSN-tech/cartify-backend/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/cartify-backend/internal/cfg"
	"github.com/DRSN-tech/cartify-backend/internal/usecase"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// UploadLimits — ограничения на multipart-загрузки.
type UploadLimits struct {
	MaxRequestBytes int64
	MaxFileBytes    int64
	MaxMemory       int64
}

// multipartOverhead — запас на заголовки частей и обычные поля формы.
const multipartOverhead = 1 << 20

// NewUploadLimits ограничивает каждый файл maxUploadBytes, а тело запроса двумя такими файлами
// с запасом на разметку multipart.
func NewUploadLimits(maxUploadBytes int64) UploadLimits {
	return UploadLimits{
		MaxRequestBytes: 2*maxUploadBytes + multipartOverhead,
		MaxFileBytes:    maxUploadBytes,
		MaxMemory:       min(maxUploadBytes, 8<<20),
	}
}

// UseCases — набор сценариев, которые обслуживает HTTP API.
type UseCases struct {
	Anomaly   usecase.AnomalyUC
	Recommend usecase.RecommendUC
	Catalog   usecase.CatalogUC
	Auth      usecase.AuthUC
	Chat      usecase.ChatUC
}

type Router struct {
	router *chi.Mux
	cfg    *cfg.HTTPConfig
	logger logger.Logger
}

func NewRouter(router *chi.Mux, cfg *cfg.HTTPConfig, logger logger.Logger) *Router {
	return &Router{router: router, cfg: cfg, logger: logger}
}

func (r *Router) Init(uc UseCases) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RealIP)
	r.router.Use(middleware.Recoverer)
	r.router.Use(accessLog(r.logger))
	r.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", sessionHeader},
		ExposedHeaders:   []string{sessionHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusOK, NewMessageResponse("ok"))
	})
	r.router.Handle("/metrics", promhttp.Handler())
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // ссылка на JSON
	))

	limits := NewUploadLimits(r.cfg.MaxUploadBytes)

	r.router.Group(func(api chi.Router) {
		if r.cfg.RateLimitRequests > 0 {
			api.Use(httprate.LimitByIP(r.cfg.RateLimitRequests, r.cfg.RateLimitWindow))
		}

		registerAnomalyRoutes(api, NewAnomalyHandler(uc.Anomaly, limits, r.logger))
		registerRecommendRoutes(api, NewRecommendHandler(uc.Recommend, limits, r.logger))
		registerCatalogRoutes(api, NewCatalogHandler(uc.Catalog, r.logger))
		registerAuthRoutes(api, NewAuthHandler(uc.Auth, r.logger))
		registerChatRoutes(api, NewChatHandler(uc.Chat, r.logger))
	})
}

func registerAnomalyRoutes(router chi.Router, h *AnomalyHandler) {
	router.Post("/upload", h.upload)
}

func registerRecommendRoutes(router chi.Router, h *RecommendHandler) {
	router.Post("/recommend", h.recommend)
}

func registerCatalogRoutes(router chi.Router, h *CatalogHandler) {
	router.Post("/get_data", h.getData)
}

func registerAuthRoutes(router chi.Router, h *AuthHandler) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
}

func registerChatRoutes(router chi.Router, h *ChatHandler) {
	router.Post("/chat", h.chat)
}
