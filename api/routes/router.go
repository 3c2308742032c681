package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dongkoo81/oracle-postgresql-migration/api/controllers"
	"github.com/dongkoo81/oracle-postgresql-migration/api/controllers/dbfeatures"
	ordercontrollers "github.com/dongkoo81/oracle-postgresql-migration/api/controllers/orders"
	"github.com/dongkoo81/oracle-postgresql-migration/api/middleware"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/documents"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/history"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/inventory"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/orders"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/products"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/quality"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/specs"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/config"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/metrics"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/redis"
)

// Services groups the domain services the HTTP surface dispatches to.
type Services struct {
	Products    products.Service
	Inventory   inventory.Service
	Orders      orders.Service
	History     history.Service
	Documents   documents.Service
	Specs       specs.Service
	Inspections quality.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Metrics(httpMetrics),
	)

	writePolicy := middleware.NewRateLimitPolicy(
		"write",
		cfg.RateLimit.WriteWindow,
		cfg.RateLimit.WriteLimit,
	)

	var redisP controllers.Pinger
	var writeGuards []func(http.Handler) http.Handler
	if redisClient != nil {
		redisP = redisClient
		writeGuards = append(writeGuards,
			middleware.WriteRateLimit(writePolicy, redisClient, logg),
			middleware.Idempotency(redisClient, cfg.Idempotency.TTL, logg),
		)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(writeGuards...)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(svc.Products, logg))
			r.Post("/", controllers.ProductCreate(svc.Products, logg))
			r.Get("/{productId}", controllers.ProductDetail(svc.Products, logg))
			r.Get("/{productId}/documents", controllers.DocumentList(svc.Documents, logg))
			r.Post("/{productId}/documents", controllers.DocumentCreate(svc.Documents, logg))
			r.Get("/{productId}/specs", controllers.SpecList(svc.Specs, logg))
			r.Post("/{productId}/specs", controllers.SpecCreate(svc.Specs, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/{productId}", controllers.InventoryGet(svc.Inventory, logg))
			r.Put("/{productId}", controllers.InventoryPut(svc.Inventory, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.Create(svc.Orders, logg))
			r.Get("/", ordercontrollers.List(svc.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(svc.Orders, logg))
			r.Post("/{orderId}/history", ordercontrollers.RecordStep(svc.History, logg))
			r.Get("/{orderId}/history", ordercontrollers.Hierarchy(svc.History, logg))
		})

		r.Route("/quality-inspections", func(r chi.Router) {
			r.Post("/", controllers.InspectionCreate(svc.Inspections, logg))
			r.Get("/", controllers.InspectionList(svc.Inspections, logg))
		})
	})

	r.Route("/api/test/oracle", func(r chi.Router) {
		r.Use(writeGuards...)

		r.Post("/procedure/calculate-total/{orderId}", dbfeatures.CalculateTotal(svc.Orders, logg))
		r.Get("/function/check-available", dbfeatures.CheckAvailable(svc.Inventory, logg))
		r.Get("/hierarchy/{orderId}", dbfeatures.OrderHierarchy(svc.History, logg))
		r.Get("/querydsl/search", dbfeatures.SearchProducts(svc.Products, logg))
		r.Post("/clob/save", dbfeatures.SaveDocument(svc.Documents, logg))
		r.Post("/xml/save", dbfeatures.SaveSpec(svc.Specs, logg))
		r.Get("/materialized-view", dbfeatures.DailySummary(svc.History, logg))
		r.Post("/materialized-view/refresh", dbfeatures.RefreshDailySummary(svc.History, logg))
		r.Get("/documents/product/{productId}", dbfeatures.ProductDocuments(svc.Documents, logg))
		r.Get("/specs/product/{productId}", dbfeatures.ProductSpecs(svc.Specs, logg))
		r.Get("/partition/{result}", dbfeatures.InspectionsByResult(svc.Inspections, logg))
		r.Get("/decode/product-status/{productId}", dbfeatures.ProductStatus(svc.Products, logg))
		r.Post("/merge/inventory", dbfeatures.MergeInventory(svc.Inventory, logg))
		r.Get("/sysdate/today-products", dbfeatures.TodayProducts(svc.Products, logg))
		r.Get("/to-date/search", dbfeatures.OrdersByDateRange(svc.Orders, logg))
		r.Get("/rownum/top-products", dbfeatures.TopProducts(svc.Products, logg))
		r.Get("/sequence/nextval", dbfeatures.SequenceNextVal(svc.Products, logg))
		r.Get("/minus/products-without-inventory", dbfeatures.ProductsWithoutInventory(svc.Products, logg))
		r.Get("/outer-join/products-inventory", dbfeatures.ProductsWithInventory(svc.Products, logg))
	})

	return r
}
