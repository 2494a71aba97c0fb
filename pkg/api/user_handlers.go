package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/npsexplorer/explorer/pkg/auth"
	"github.com/npsexplorer/explorer/pkg/favorites"
	"github.com/npsexplorer/explorer/pkg/httputil"
	"github.com/npsexplorer/explorer/pkg/observability"
	"github.com/npsexplorer/explorer/pkg/users"
)

const (
	msgUserNotFound   = "User doesn't exist"
	msgUserEmptyPatch = "Request body must contain firstName, lastName, email, password, and or homeState"
)

// UserHandlers handles the users resource
type UserHandlers struct {
	users     users.Store
	favorites favorites.Store
	hasher    auth.PasswordHasher
	static    wrapper
	bearer    wrapper
	out       serializer
	logger    *observability.Logger
}

// NewUserHandlers creates the users handlers. static guards listing and
// registration, bearer guards the per-user routes.
func NewUserHandlers(store users.Store, favs favorites.Store, hasher auth.PasswordHasher, static, bearer wrapper, out serializer, logger *observability.Logger) *UserHandlers {
	return &UserHandlers{
		users:     store,
		favorites: favs,
		hasher:    hasher,
		static:    static,
		bearer:    bearer,
		out:       out,
		logger:    logger,
	}
}

// RegisterRoutes registers the users routes
func (h *UserHandlers) RegisterRoutes(router *mux.Router) {
	router.Handle("/users", guard(h.static, h.listUsers)).Methods(http.MethodGet)
	router.Handle("/users", guard(h.static, h.createUser)).Methods(http.MethodPost)

	// Registered before /users/{user_id} so "favorites" is not taken as an id
	router.Handle("/users/favorites/{user_account}", guard(h.bearer, h.listAccountFavorites)).Methods(http.MethodGet)

	router.Handle("/users/{user_id}", guard(h.bearer, h.getUser)).Methods(http.MethodGet)
	router.Handle("/users/{user_id}", guard(h.bearer, h.deleteUser)).Methods(http.MethodDelete)
	router.Handle("/users/{user_id}", guard(h.bearer, h.updateUser)).Methods(http.MethodPatch)
}

// listUsers handles GET /api/users
func (h *UserHandlers) listUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.users.List(r.Context())
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to list users")
		return
	}
	_ = httputil.WriteSuccess(w, h.out.userList(accounts))
}

// createUser handles POST /api/users
func (h *UserHandlers) createUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	required := []struct {
		name  string
		value *string
	}{
		{"firstName", req.FirstName},
		{"lastName", req.LastName},
		{"email", req.Email},
		{"password", req.Password},
	}
	for _, field := range required {
		if field.value == nil || *field.value == "" {
			httputil.WriteBadRequest(w, (&auth.MissingFieldError{Field: field.name}).Error())
			return
		}
	}

	if err := users.ValidatePassword(*req.Password); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	email := auth.NormalizeEmail(*req.Email)
	if err := users.ValidateEmail(email); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	taken, err := h.users.EmailExists(r.Context(), email)
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to check email")
		return
	}
	if taken {
		httputil.WriteBadRequest(w, users.MsgEmailTaken)
		return
	}

	hash, err := h.hasher.Hash(*req.Password)
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to hash password")
		return
	}

	acc, err := h.users.Create(r.Context(), &users.NewUser{
		FirstName:    *req.FirstName,
		LastName:     *req.LastName,
		Email:        email,
		PasswordHash: hash,
		Nickname:     req.Nickname,
		HomeState:    req.HomeState,
	})
	if errors.Is(err, users.ErrEmailTaken) {
		httputil.WriteBadRequest(w, users.MsgEmailTaken)
		return
	}
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to create user")
		return
	}

	observability.FromContext(r.Context(), h.logger).
		WithField("account_id", acc.ID).
		Info("User registered")

	_ = httputil.WriteCreated(w, fmt.Sprintf("/api/users/%d", acc.ID), h.out.user(acc))
}

// loadUser resolves the {user_id} path variable. It writes the 404 or 500
// itself and returns nil in that case.
func (h *UserHandlers) loadUser(w http.ResponseWriter, r *http.Request) *auth.Account {
	id, err := httputil.ParsePathInt64(r, "user_id")
	if err != nil {
		httputil.WriteErrorObject(w, http.StatusNotFound, msgUserNotFound)
		return nil
	}

	acc, err := h.users.GetByID(r.Context(), id)
	if errors.Is(err, users.ErrNotFound) {
		httputil.WriteErrorObject(w, http.StatusNotFound, msgUserNotFound)
		return nil
	}
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to load user")
		return nil
	}
	return acc
}

// getUser handles GET /api/users/{user_id}
func (h *UserHandlers) getUser(w http.ResponseWriter, r *http.Request) {
	acc := h.loadUser(w, r)
	if acc == nil {
		return
	}
	_ = httputil.WriteSuccess(w, h.out.user(acc))
}

// deleteUser handles DELETE /api/users/{user_id}
func (h *UserHandlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	acc := h.loadUser(w, r)
	if acc == nil {
		return
	}

	err := h.users.Delete(r.Context(), acc.ID)
	if errors.Is(err, users.ErrNotFound) {
		httputil.WriteErrorObject(w, http.StatusNotFound, msgUserNotFound)
		return
	}
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to delete user")
		return
	}
	httputil.WriteNoContent(w)
}

// updateUser handles PATCH /api/users/{user_id}
func (h *UserHandlers) updateUser(w http.ResponseWriter, r *http.Request) {
	acc := h.loadUser(w, r)
	if acc == nil {
		return
	}

	var req UserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	// Names may change but never become blank
	for _, field := range []struct {
		name  string
		value *string
	}{
		{"firstName", req.FirstName},
		{"lastName", req.LastName},
	} {
		if field.value != nil && *field.value == "" {
			httputil.WriteBadRequest(w, (&auth.MissingFieldError{Field: field.name}).Error())
			return
		}
	}

	update := &users.Update{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Nickname:  req.Nickname,
		HomeState: req.HomeState,
	}
	if req.Password != nil {
		if err := users.ValidatePassword(*req.Password); err != nil {
			httputil.WriteBadRequest(w, err.Error())
			return
		}
		hash, err := h.hasher.Hash(*req.Password)
		if err != nil {
			serverError(w, r, h.logger, err, "Failed to hash password")
			return
		}
		update.PasswordHash = &hash
	}
	if req.Email != nil {
		email := auth.NormalizeEmail(*req.Email)
		if err := users.ValidateEmail(email); err != nil {
			httputil.WriteBadRequest(w, err.Error())
			return
		}
		update.Email = &email
	}

	if update.Empty() {
		httputil.WriteErrorObject(w, http.StatusBadRequest, msgUserEmptyPatch)
		return
	}

	err := h.users.Update(r.Context(), acc.ID, update)
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		httputil.WriteBadRequest(w, users.MsgEmailTaken)
		return
	case errors.Is(err, users.ErrNotFound):
		httputil.WriteErrorObject(w, http.StatusNotFound, msgUserNotFound)
		return
	case err != nil:
		serverError(w, r, h.logger, err, "Failed to update user")
		return
	}

	httputil.WriteInfo(w, http.StatusOK, fmt.Sprintf("User with id %d edited", acc.ID))
}

// listAccountFavorites handles GET /api/users/favorites/{user_account}
func (h *UserHandlers) listAccountFavorites(w http.ResponseWriter, r *http.Request) {
	account, err := httputil.ParsePathInt64(r, "user_account")
	if err != nil {
		httputil.WriteErrorObject(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	list, err := h.favorites.ListByAccount(r.Context(), account)
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to list favorites")
		return
	}
	_ = httputil.WriteSuccess(w, h.out.favoriteList(list))
}
