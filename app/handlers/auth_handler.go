package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
	"go.uber.org/zap"

	"github.com/webshop-go/storefront/app/helpers"
	"github.com/webshop-go/storefront/app/middlewares"
	"github.com/webshop-go/storefront/app/repositories"
	"github.com/webshop-go/storefront/app/services"
	"github.com/webshop-go/storefront/app/utils/sessions"
)

// AuthHandler drives the session transitions the cart synchronizer cares
// about. Account management itself (registration, profiles, password resets)
// lives outside this service.
type AuthHandler struct {
	render       *render.Render
	userRepo     repositories.UserRepositoryImpl
	sessionStore sessions.SessionStore
	carts        *services.CartSessionManager
	validate     *validator.Validate
	log          *zap.SugaredLogger
}

func NewAuthHandler(r *render.Render, userRepo repositories.UserRepositoryImpl, sessionStore sessions.SessionStore, carts *services.CartSessionManager, validate *validator.Validate, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		render:       r,
		userRepo:     userRepo,
		sessionStore: sessionStore,
		carts:        carts,
		validate:     validate,
		log:          log,
	}
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		_ = h.render.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(&form); err != nil {
		_ = h.render.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	user, err := h.userRepo.FindByEmail(r.Context(), form.Email)
	if err != nil {
		h.log.Errorw("user lookup failed", "email", form.Email, "error", err)
		_ = h.render.JSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	if user == nil || !helpers.CheckPassword(user.Password, form.Password) {
		_ = h.render.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
		return
	}

	if err := h.sessionStore.SetUserID(w, r, user.ID); err != nil {
		h.log.Errorw("failed to store user id in session", "user_id", user.ID, "error", err)
		_ = h.render.JSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}

	// Sign-in loads the remote cart and merges the anonymous one into it.
	clientID := middlewares.ClientIDFromContext(r.Context())
	h.carts.SignIn(r.Context(), clientID, user.ID)

	sess := h.carts.Session(r.Context(), clientID, user.ID)
	_ = h.render.JSON(w, http.StatusOK, map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"cart":    newCartView(sess.Store.Cart()),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clientID := middlewares.ClientIDFromContext(r.Context())
	h.carts.SignOut(r.Context(), clientID)

	if err := h.sessionStore.ClearUserID(w, r); err != nil {
		h.log.Errorw("failed to clear user id from session", "error", err)
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
