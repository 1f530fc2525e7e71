package auth

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/spf13/viper"

	"github.com/inkwellhq/inkwell-web/internal/logger"
	"github.com/inkwellhq/inkwell-web/internal/models"
	"github.com/inkwellhq/inkwell-web/internal/services"
)

const sessionName = "inkwell-session"

var Store *sessions.CookieStore

func Init() {
	Store = sessions.NewCookieStore([]byte(viper.GetString("auth.session_secret")))
	Store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Handler serves the register/login/logout endpoints
type Handler struct {
	users  *services.UserService
	logger *logger.Log
}

func NewHandler(users *services.UserService) *Handler {
	return &Handler{
		users:  users,
		logger: logger.New(),
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	if exists, err := h.users.UsernameExists(req.Username); err != nil {
		h.logger.WithError(err).Error("Failed to check username")
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	} else if exists {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}

	if exists, err := h.users.EmailExists(req.Email); err != nil {
		h.logger.WithError(err).Error("Failed to check email")
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	} else if exists {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	user, err := h.users.CreateUser(&req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create user")
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	if err := h.saveSession(w, r, user.ID); err != nil {
		h.logger.WithError(err).Error("Failed to save session")
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.AuthenticateUser(&req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	if err := h.users.UpdateLastLogin(user.ID); err != nil {
		h.logger.WithError(err).Warn("Failed to update last login")
	}

	if err := h.saveSession(w, r, user.ID); err != nil {
		h.logger.WithError(err).Error("Failed to save session")
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, err := UserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := UserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DisplayName == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "display name and email are required")
		return
	}

	if err := h.users.UpdateProfile(userID, req.DisplayName, req.Email); err != nil {
		h.logger.WithError(err).Error("Failed to update profile")
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := UserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.PasswordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.users.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := Store.Get(r, sessionName)
	session.Values["user_id"] = nil
	session.Options.MaxAge = -1
	session.Save(r, w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) saveSession(w http.ResponseWriter, r *http.Request, userID int) error {
	session, _ := Store.Get(r, sessionName)
	session.Values["user_id"] = userID
	return session.Save(r, w)
}

// Middleware rejects requests without an authenticated session
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := UserID(r); err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserID extracts the authenticated user's ID from the request session
func UserID(r *http.Request) (int, error) {
	session, err := Store.Get(r, sessionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get session: %w", err)
	}

	userID, ok := session.Values["user_id"].(int)
	if !ok || userID == 0 {
		return 0, fmt.Errorf("not authenticated")
	}
	return userID, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
