package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/npsexplorer/explorer/pkg/auth"
	"github.com/npsexplorer/explorer/pkg/favorites"
	"github.com/npsexplorer/explorer/pkg/httputil"
	"github.com/npsexplorer/explorer/pkg/middleware"
	"github.com/npsexplorer/explorer/pkg/observability"
)

const (
	msgFavoriteNotFound   = "Favorite doesn't exist"
	msgFavoriteEmptyPatch = "Request body must contain 'favorite'"
)

// FavoriteHandlers handles the favorite park toggles
type FavoriteHandlers struct {
	store  favorites.Store
	bearer wrapper
	out    serializer
	logger *observability.Logger
}

// NewFavoriteHandlers creates the favorite handlers
func NewFavoriteHandlers(store favorites.Store, bearer wrapper, out serializer, logger *observability.Logger) *FavoriteHandlers {
	return &FavoriteHandlers{
		store:  store,
		bearer: bearer,
		out:    out,
		logger: logger,
	}
}

// RegisterRoutes registers the favorite routes. All of them need a bearer token.
func (h *FavoriteHandlers) RegisterRoutes(router *mux.Router) {
	router.Handle("/favorites", guard(h.bearer, h.listFavorites)).Methods(http.MethodGet)
	router.Handle("/favorites", guard(h.bearer, h.createFavorite)).Methods(http.MethodPost)
	router.Handle("/favorites/{favorite_id}", guard(h.bearer, h.getFavorite)).Methods(http.MethodGet)
	router.Handle("/favorites/{favorite_id}", guard(h.bearer, h.deleteFavorite)).Methods(http.MethodDelete)
	router.Handle("/favorites/{favorite_id}", guard(h.bearer, h.updateFavorite)).Methods(http.MethodPatch)
}

// listFavorites handles GET /api/favorites
func (h *FavoriteHandlers) listFavorites(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to list favorites")
		return
	}
	_ = httputil.WriteSuccess(w, h.out.favoriteList(list))
}

// createFavorite handles POST /api/favorites. The row is keyed by the
// requesting account and the park code.
func (h *FavoriteHandlers) createFavorite(w http.ResponseWriter, r *http.Request) {
	var req FavoriteRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.ParkCode == nil {
		httputil.WriteBadRequest(w, (&auth.MissingFieldError{Field: "parkCode"}).Error())
		return
	}
	if req.Favorite == nil {
		httputil.WriteBadRequest(w, (&auth.MissingFieldError{Field: "favorite"}).Error())
		return
	}

	authCtx := middleware.GetAuthContext(r)
	if authCtx == nil || authCtx.Account == nil {
		httputil.WriteUnauthorized(w)
		return
	}

	fav, err := h.store.Upsert(r.Context(), authCtx.Account.ID, *req.ParkCode, *req.Favorite)
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to save favorite")
		return
	}

	_ = httputil.WriteCreated(w, fmt.Sprintf("/api/favorites/%d", fav.ID), h.out.favorite(fav))
}

func (h *FavoriteHandlers) loadFavorite(w http.ResponseWriter, r *http.Request) *favorites.Favorite {
	id, err := httputil.ParsePathInt64(r, "favorite_id")
	if err != nil {
		httputil.WriteNotFoundError(w, msgFavoriteNotFound)
		return nil
	}

	fav, err := h.store.Get(r.Context(), id)
	if errors.Is(err, favorites.ErrNotFound) {
		httputil.WriteNotFoundError(w, msgFavoriteNotFound)
		return nil
	}
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to load favorite")
		return nil
	}
	return fav
}

// getFavorite handles GET /api/favorites/{favorite_id}
func (h *FavoriteHandlers) getFavorite(w http.ResponseWriter, r *http.Request) {
	fav := h.loadFavorite(w, r)
	if fav == nil {
		return
	}
	_ = httputil.WriteSuccess(w, h.out.favorite(fav))
}

// deleteFavorite handles DELETE /api/favorites/{favorite_id}
func (h *FavoriteHandlers) deleteFavorite(w http.ResponseWriter, r *http.Request) {
	fav := h.loadFavorite(w, r)
	if fav == nil {
		return
	}

	err := h.store.Delete(r.Context(), fav.ID)
	if errors.Is(err, favorites.ErrNotFound) {
		httputil.WriteNotFoundError(w, msgFavoriteNotFound)
		return
	}
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to delete favorite")
		return
	}
	httputil.WriteNoContent(w)
}

// updateFavorite handles PATCH /api/favorites/{favorite_id}
func (h *FavoriteHandlers) updateFavorite(w http.ResponseWriter, r *http.Request) {
	fav := h.loadFavorite(w, r)
	if fav == nil {
		return
	}

	var req FavoriteRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Favorite == nil {
		httputil.WriteBadRequest(w, msgFavoriteEmptyPatch)
		return
	}

	err := h.store.SetFavorite(r.Context(), fav.ID, *req.Favorite)
	if errors.Is(err, favorites.ErrNotFound) {
		httputil.WriteNotFoundError(w, msgFavoriteNotFound)
		return
	}
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to update favorite")
		return
	}
	httputil.WriteInfo(w, http.StatusOK, msgRequestCompleted)
}
