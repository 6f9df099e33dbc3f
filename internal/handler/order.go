package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/northmart/storefront/internal/order"
)

const recentOrdersLimit = 5

// OrderHandler handles HTTP requests for the admin order dashboard.
type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Stats returns the recent-orders summary for the dashboard.
func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.RecentOrders(r.Context(), recentOrdersLimit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch recent orders")
		respondWithError(w, http.StatusInternalServerError, "An error occurred while fetching dashboard stats.")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"recentOrders": summaries})
}

// ListOrders returns orders filtered by repeated status params and an
// optional dateFilter=today constraint.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	statuses := make([]order.Status, 0, len(query["status"]))
	for _, raw := range query["status"] {
		status, err := order.ParseStatus(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid status value.")
			return
		}
		statuses = append(statuses, status)
	}

	todayOnly := query.Get("dateFilter") == "today"

	orders, err := h.svc.ActiveOrders(r.Context(), statuses, todayOnly)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch orders")
		respondWithError(w, http.StatusInternalServerError, "An error occurred while fetching orders.")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID.")
		return
	}

	o, err := h.svc.OrderByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found.")
			return
		}
		log.Error().Err(err).Int64("order_id", id).Msg("Failed to fetch order")
		respondWithError(w, http.StatusInternalServerError, "An error occurred while fetching the order.")
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID.")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newStatus, err := order.ParseStatus(req.Status)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid status value.")
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), id, newStatus); err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Order not found.")
		case errors.Is(err, order.ErrInvalidTransition):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error().Err(err).Int64("order_id", id).Msg("Failed to update order status")
			respondWithError(w, http.StatusInternalServerError, "An error occurred while updating the order status.")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Order status updated successfully."})
}
