package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/dstrand/tally/internal/connectivity"
	"github.com/dstrand/tally/internal/handler"
	"github.com/dstrand/tally/internal/middleware"
	"github.com/dstrand/tally/internal/register"
	"github.com/dstrand/tally/internal/store"
	syncer "github.com/dstrand/tally/internal/sync"
	"github.com/dstrand/tally/internal/ws"
)

// Server wires the local JSON API the UI works against. All reads come
// from the local store; all writes go through the domain mutators.
type Server struct {
	db        *sql.DB
	hub       *ws.Hub
	productH  *handler.ProductHandler
	categoryH *handler.CategoryHandler
	saleH     *handler.SaleHandler
	statusH   *handler.StatusHandler
	logger    *slog.Logger
}

func New(db *sql.DB, monitor *connectivity.Monitor, sy *syncer.Syncer, hub *ws.Hub, ownerID *string, logger *slog.Logger) *Server {
	stores := store.New(db)
	svc := register.NewService(db, logger.With("component", "register"))

	// Status changes and drain summaries go out over the hub.
	monitor.Subscribe(func(st connectivity.State) {
		hub.Broadcast(ws.StatusMessage(string(st)))
	})
	sy.OnResult(func(res syncer.Result) {
		hub.Broadcast(ws.Message{
			Type:  "sync_complete",
			State: string(monitor.State()),
			Extra: map[string]any{
				"attempted": res.Attempted,
				"failed":    res.Failed,
			},
		})
	})

	return &Server{
		db:        db,
		hub:       hub,
		productH:  handler.NewProductHandler(svc, stores.Products, ownerID, logger.With("component", "product")),
		categoryH: handler.NewCategoryHandler(svc, stores.Categories, logger.With("component", "category")),
		saleH:     handler.NewSaleHandler(svc, stores.Sales, ownerID, logger.With("component", "sale")),
		statusH:   handler.NewStatusHandler(monitor, stores.Pending, sy, logger.With("component", "status")),
		logger:    logger,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.Handler(s.hub))

	mux.HandleFunc("GET /api/products", s.productH.List)
	mux.HandleFunc("POST /api/products", s.productH.Create)
	mux.HandleFunc("GET /api/products/{id}", s.productH.Get)
	mux.HandleFunc("PATCH /api/products/{id}", s.productH.Update)
	mux.HandleFunc("DELETE /api/products/{id}", s.productH.Delete)

	mux.HandleFunc("GET /api/categories", s.categoryH.List)
	mux.HandleFunc("POST /api/categories", s.categoryH.Create)
	mux.HandleFunc("PATCH /api/categories/{id}", s.categoryH.Update)
	mux.HandleFunc("DELETE /api/categories/{id}", s.categoryH.Delete)

	mux.HandleFunc("GET /api/sales", s.saleH.List)
	mux.HandleFunc("POST /api/sales", s.saleH.Create)

	mux.HandleFunc("GET /api/status", s.statusH.Status)
	mux.HandleFunc("POST /api/connectivity", s.statusH.Connectivity)
	mux.HandleFunc("POST /api/sync", s.statusH.TriggerSync)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		http.Error(w, "db unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
