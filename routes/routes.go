package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/Tech-xpat/pounds-bosses-ng-sub001/config"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/controllers"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/controllers/admins"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/middleware"
)

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "accrual-api",
	})
}

func InitRouter(cfg *config.Config, cron *controllers.CronController, accrualRuns *admins.AccrualRunsController) *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint for Docker health checks (root level)
	r.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	// CORS - origins from CORS_ALLOWED_ORIGINS (comma-separated) or defaults
	origins := []string{
		"http://localhost:3000", "http://localhost:8080", "http://127.0.0.1:3000", "http://127.0.0.1:8080",
	}
	if originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS"); originsEnv != "" {
		for _, p := range strings.Split(originsEnv, ",") {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-CRON-KEY", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/v3").Subrouter()

	// Catch-all OPTIONS handler for CORS preflight
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	// Rate limiter for cron: 1000/hour
	cronLimiter := middleware.NewIPRateLimiter(1000, time.Hour)
	if proxies := os.Getenv("TRUSTED_PROXIES"); proxies != "" {
		cronLimiter.SetTrustedProxies(strings.Split(proxies, ","))
	}

	// Cron endpoint for daily interest (protected via X-CRON-KEY header)
	api.Handle("/cron/daily-interest", cronLimiter.Middleware(http.HandlerFunc(cron.DailyInterest))).Methods(http.MethodPost)

	// Admin report surface (protected via admin JWT)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminAuthMiddleware(cfg.JWTSecret))
	admin.Handle("/accrual-runs", http.HandlerFunc(accrualRuns.List)).Methods(http.MethodGet)
	admin.Handle("/accrual-runs/latest", http.HandlerFunc(accrualRuns.Latest)).Methods(http.MethodGet)

	// Health check endpoint under the API prefix
	api.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	return r
}
