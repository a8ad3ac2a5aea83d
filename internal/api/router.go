package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/solskiinventar/internal/imaging"
	"github.com/erazemk/solskiinventar/internal/metrics"
	"github.com/erazemk/solskiinventar/internal/sweeper"
)

// Options configures NewRouter. Zero values get working defaults.
type Options struct {
	JWTSecret string
	Now       func() time.Time
	Metrics   *metrics.Metrics
	Sweeper   *sweeper.Sweeper
	Images    *imaging.Processor
}

// NewRouter creates the API router with all endpoints registered, wrapped
// in request ID, logging and metrics middleware.
func NewRouter(db *sql.DB, opts Options) http.Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Sweeper == nil {
		opts.Sweeper = sweeper.New(db, opts.Now, opts.Metrics)
	}
	if opts.Images == nil {
		opts.Images = imaging.NewProcessor(0)
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: opts.JWTSecret, Now: opts.Now}
	adminsHandler := &AdminsHandler{DB: db, Now: opts.Now}
	itemsHandler := &ItemsHandler{DB: db, Now: opts.Now, Images: opts.Images}
	usersHandler := &UsersHandler{DB: db, Now: opts.Now}
	borrowingsHandler := &BorrowingsHandler{DB: db, Now: opts.Now, Metrics: opts.Metrics, Sweeper: opts.Sweeper}
	reportsHandler := &ReportsHandler{DB: db, Now: opts.Now}
	healthHandler := &HealthHandler{DB: db, Now: opts.Now}

	authMW := AuthMiddleware(opts.JWTSecret, db)
	protect := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public.
	mux.HandleFunc("GET /healthz", healthHandler.Check)
	mux.Handle("GET /metrics", opts.Metrics.Handler())
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("POST /api/auth/logout", protect(authHandler.Logout))
	mux.Handle("POST /api/admins", protect(adminsHandler.Create))

	// Items.
	mux.Handle("GET /api/items", protect(itemsHandler.List))
	mux.Handle("POST /api/items", protect(itemsHandler.Create))
	mux.Handle("GET /api/items/search", protect(itemsHandler.Search))
	mux.Handle("GET /api/items/{id}", protect(itemsHandler.Get))
	mux.Handle("PATCH /api/items/{id}", protect(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", protect(itemsHandler.Delete))
	mux.Handle("PUT /api/items/{id}/image", protect(itemsHandler.UploadImage))
	mux.Handle("GET /api/items/{id}/image", protect(itemsHandler.GetImage))
	mux.Handle("GET /api/labels/{code}", protect(itemsHandler.GetByLabel))

	// Users.
	mux.Handle("GET /api/users", protect(usersHandler.List))
	mux.Handle("POST /api/users", protect(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", protect(usersHandler.Get))
	mux.Handle("GET /api/users/{id}/borrowings", protect(borrowingsHandler.ListForUser))

	// Borrowings.
	mux.Handle("GET /api/borrowings", protect(borrowingsHandler.List))
	mux.Handle("POST /api/borrowings", protect(borrowingsHandler.Borrow))
	mux.Handle("GET /api/borrowings/active", protect(borrowingsHandler.ListActive))
	mux.Handle("GET /api/borrowings/overdue", protect(borrowingsHandler.ListOverdue))
	mux.Handle("POST /api/borrowings/sweep", protect(borrowingsHandler.Sweep))
	mux.Handle("GET /api/borrowings/{id}", protect(borrowingsHandler.Get))
	mux.Handle("POST /api/borrowings/{id}/return", protect(borrowingsHandler.Return))

	// Reports.
	mux.Handle("GET /api/reports/dashboard", protect(reportsHandler.Dashboard))
	mux.Handle("GET /api/reports/usage", protect(reportsHandler.Usage))

	return RequestIDMiddleware(LoggingMiddleware(MetricsMiddleware(opts.Metrics)(mux)))
}
