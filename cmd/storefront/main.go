// Command storefront serves the storefront core over HTTP: cache-backed
// catalog reads, cart mutations, checkout, and order history, plus
// health and metrics endpoints.
package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/shopkit-go/storefront-core/pkg/cart"
	"github.com/shopkit-go/storefront-core/pkg/catalog"
	"github.com/shopkit-go/storefront-core/pkg/logging"
	"github.com/shopkit-go/storefront-core/pkg/metrics"
	"github.com/shopkit-go/storefront-core/pkg/storage"
)

func main() {
	catalogURL := getEnv("CATALOG_URL", "https://itx-frontend-test.onrender.com")
	port := getEnv("PORT", "8080")
	stateDir := getEnv("STATE_DIR", ".")

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "") != "",
		Output: os.Stderr,
	})

	store, err := storage.NewFileStore(filepath.Join(stateDir, "storefront-state.json"))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open state store")
	}

	api, err := catalog.New(catalog.DefaultConfig(store, catalogURL))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create catalog client")
	}

	manager, err := cart.NewManager(cart.Config{
		Store:   store,
		Catalog: api,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create cart manager")
	}

	srv := &server{
		api:    api,
		cart:   manager,
		logger: logger,
	}

	addr := ":" + port
	logger.Info().
		Str("addr", addr).
		Str("catalog_url", catalogURL).
		Msg("Starting storefront server")

	if err := http.ListenAndServe(addr, srv.router()); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

type server struct {
	api    *catalog.Client
	cart   *cart.Manager
	logger zerolog.Logger
}

func (s *server) router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", s.listProducts)
		r.Get("/products/{id}", s.getProduct)

		r.Get("/cart", s.getCart)
		r.Post("/cart/items", s.addCartItem)
		r.Put("/cart/items", s.updateCartItem)
		r.Delete("/cart/items", s.removeCartItem)
		r.Delete("/cart", s.clearCart)

		r.Post("/checkout", s.checkout)
		r.Get("/orders", s.listOrders)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *server) listProducts(w http.ResponseWriter, r *http.Request) {
	forceRefresh := r.URL.Query().Get("refresh") != ""

	products, err := s.api.FetchProducts(r.Context(), forceRefresh)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, products)
}

func (s *server) getProduct(w http.ResponseWriter, r *http.Request) {
	forceRefresh := r.URL.Query().Get("refresh") != ""

	product, err := s.api.FetchProduct(r.Context(), chi.URLParam(r, "id"), forceRefresh)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, product)
}

// cartItemRequest identifies one line item, with an optional quantity.
type cartItemRequest struct {
	ProductID   string `json:"productId"`
	ColorCode   string `json:"colorCode"`
	StorageCode string `json:"storageCode"`
	Quantity    int    `json:"quantity"`
}

type cartResponse struct {
	Items []cart.LineItem `json:"items"`
	Count int             `json:"count"`
}

func (s *server) getCart(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, cartResponse{
		Items: s.cart.Items(),
		Count: s.cart.Count(),
	})
}

func (s *server) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be at least 1"})
		return
	}

	if err := s.cart.AddItem(r.Context(), req.ProductID, req.ColorCode, req.StorageCode, req.Quantity, nil); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, cartResponse{
		Items: s.cart.Items(),
		Count: s.cart.Count(),
	})
}

func (s *server) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	s.cart.UpdateQuantity(r.Context(), req.ProductID, req.ColorCode, req.StorageCode, req.Quantity)
	s.writeJSON(w, http.StatusOK, cartResponse{
		Items: s.cart.Items(),
		Count: s.cart.Count(),
	})
}

func (s *server) removeCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	s.cart.RemoveItem(r.Context(), req.ProductID, req.ColorCode, req.StorageCode)
	s.writeJSON(w, http.StatusOK, cartResponse{
		Items: s.cart.Items(),
		Count: s.cart.Count(),
	})
}

func (s *server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.cart.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) checkout(w http.ResponseWriter, r *http.Request) {
	var info cart.CustomerInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := s.cart.Checkout(r.Context(), info)
	if err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	if order == nil {
		s.writeJSON(w, http.StatusConflict, map[string]string{"error": "cart is empty"})
		return
	}

	s.writeJSON(w, http.StatusCreated, order)
}

func (s *server) listOrders(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cart.Orders())
}

func (s *server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write response")
	}
}

// writeError maps catalog failures onto HTTP statuses: network failures
// become 502, upstream HTTP errors keep their status.
func (s *server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway

	var apiErr *catalog.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		status = apiErr.StatusCode
	}

	s.logger.Error().Err(err).Int("status_code", status).Msg("Request failed")
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
