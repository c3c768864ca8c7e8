package api

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/erazemk/regali/internal/model"
)

// Config carries the router settings.
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
	// RateLimit applies per user to structure applies and zone deletion.
	RateLimit string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, cfg Config) (http.Handler, error) {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL}
	usersHandler := &UsersHandler{DB: db}
	warehousesHandler := &WarehousesHandler{DB: db}
	zonesHandler := &ZonesHandler{DB: db}
	binsHandler := &BinsHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}

	authMW := AuthMiddleware(cfg.JWTSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)
	limited, err := RateLimit(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("parsing rate limit: %w", err)
	}

	read := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	write := func(h http.HandlerFunc) http.Handler { return authMW(requireManager(h)) }
	heavy := func(h http.HandlerFunc) http.Handler { return authMW(requireManager(limited(h))) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/schema/structure", StructureSchema)

	mux.Handle("PUT /api/auth/password", read(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", read(authHandler.Logout))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Warehouses.
	mux.Handle("GET /api/warehouses", read(warehousesHandler.List))
	mux.Handle("POST /api/warehouses", write(warehousesHandler.Create))
	mux.Handle("GET /api/warehouses/{id}", read(warehousesHandler.Get))

	// Zones and their structure.
	mux.Handle("GET /api/zones", read(zonesHandler.List))
	mux.Handle("POST /api/zones", write(zonesHandler.Create))
	mux.Handle("GET /api/zones/{id}", read(zonesHandler.Get))
	mux.Handle("PUT /api/zones/{id}", write(zonesHandler.Update))
	mux.Handle("DELETE /api/zones/{id}", heavy(zonesHandler.Delete))
	mux.Handle("GET /api/zones/{id}/structure", read(zonesHandler.GetStructure))
	mux.Handle("POST /api/zones/{id}/structure", heavy(zonesHandler.ApplyStructure))
	mux.Handle("POST /api/zones/{id}/structure/preview", write(zonesHandler.PreviewStructure))
	mux.Handle("PUT /api/zones/{id}/layout", write(zonesHandler.SetLayout))
	mux.Handle("POST /api/zones/{id}/layout/reset", write(zonesHandler.ResetLayout))

	// Bins.
	mux.Handle("GET /api/bins", read(binsHandler.List))
	mux.Handle("GET /api/bins/lookup", read(binsHandler.Lookup))
	mux.Handle("GET /api/bins/occupancy", read(binsHandler.Occupancy))
	mux.Handle("GET /api/bins/occupancy.png", read(binsHandler.OccupancyPNG))
	mux.Handle("GET /api/bins/occupancy.xlsx", read(binsHandler.OccupancyXLSX))
	mux.Handle("GET /api/bins/{id}", read(binsHandler.Get))
	mux.Handle("PUT /api/bins/{id}/layout", write(binsHandler.SetLayout))
	mux.Handle("DELETE /api/bins/{id}/layout", write(binsHandler.ClearLayout))

	// Items.
	mux.Handle("GET /api/items", read(itemsHandler.List))
	mux.Handle("POST /api/items", write(itemsHandler.Create))
	mux.Handle("GET /api/items/{id}", read(itemsHandler.Get))
	mux.Handle("PUT /api/items/{id}/bin", write(itemsHandler.Move))
	mux.Handle("DELETE /api/items/{id}", write(itemsHandler.Delete))
	mux.Handle("GET /api/items/{id}/history", read(itemsHandler.GetHistory))

	return mux, nil
}
