package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/discounts"
	"github.com/angelmondragon/storefront-backend/internal/quotes"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// NewRouter wires the HTTP surface. redisP may be nil when the rule cache is disabled.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP db.Pinger,
	gatherer prometheus.Gatherer,
	quoteService quotes.Service,
	discountService discounts.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbP,
			"redis":    redisP,
		}))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/pricing", func(r chi.Router) {
		r.Post("/quote", controllers.QuotePrice(quoteService, logg))
		r.Post("/quote/batch", controllers.QuoteBatch(quoteService, logg))
	})

	r.Route("/api/admin/v1/discount-rules", func(r chi.Router) {
		r.Get("/", controllers.AdminListDiscountRules(discountService, logg))
		r.Post("/", controllers.AdminCreateDiscountRule(discountService, logg))
		r.Route("/{ruleId}", func(r chi.Router) {
			r.Get("/", controllers.AdminGetDiscountRule(discountService, logg))
			r.Delete("/", controllers.AdminDeleteDiscountRule(discountService, logg))
			r.Post("/activate", controllers.AdminSetDiscountRuleActive(discountService, logg, true))
			r.Post("/deactivate", controllers.AdminSetDiscountRuleActive(discountService, logg, false))
		})
	})

	return r
}
