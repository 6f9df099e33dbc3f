package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/northmart/storefront/internal/category"
)

// CategoryHandler handles HTTP requests for admin category management.
type CategoryHandler struct {
	svc category.Service
}

func NewCategoryHandler(svc category.Service) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in category.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.svc.Create(r.Context(), in)
	if err != nil {
		var verr *category.ValidationError
		switch {
		case errors.As(err, &verr):
			respondWithValidation(w, verr)
		case errors.Is(err, category.ErrDuplicateName):
			respondWithError(w, http.StatusConflict, "A category with this name already exists.")
		default:
			log.Error().Err(err).Msg("Failed to create category")
			respondWithError(w, http.StatusInternalServerError, "An error occurred while creating the category.")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories")
		respondWithError(w, http.StatusInternalServerError, "An error occurred while fetching categories.")
		return
	}

	respondWithJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "categoryId"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid category ID.")
		return
	}

	var in category.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		var verr *category.ValidationError
		switch {
		case errors.As(err, &verr):
			respondWithValidation(w, verr)
		case errors.Is(err, category.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Category not found.")
		case errors.Is(err, category.ErrDuplicateName):
			respondWithError(w, http.StatusConflict, "A category with this name already exists.")
		default:
			log.Error().Err(err).Int64("category_id", id).Msg("Failed to update category")
			respondWithError(w, http.StatusInternalServerError, "An error occurred while updating the category.")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "categoryId"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid category ID.")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		var refErr *category.ReferencedError
		switch {
		case errors.Is(err, category.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Category not found.")
		case errors.As(err, &refErr):
			respondWithError(w, http.StatusConflict, refErr.Error())
		default:
			log.Error().Err(err).Int64("category_id", id).Msg("Failed to delete category")
			respondWithError(w, http.StatusInternalServerError, "An error occurred while deleting the category.")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
