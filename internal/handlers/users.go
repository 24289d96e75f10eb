package handlers

import (
	"DataSentinel/internal/config"
	"DataSentinel/internal/middleware"
	"DataSentinel/internal/model"
	"DataSentinel/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// UserHandler: регистрация, вход и данные текущего пользователя.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg}
}

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// authResponse: ответ на регистрацию и вход; токен дублирует cookie для CLI.
type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register регистрация пользователя
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeJSON(w, r, h.Logger, "Register", &req) {
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, h.Logger, "Register", err)
		return
	}
	h.Logger.Infow("user registered", "user_id", user.ID, "login", user.Login)
	h.issueToken(w, user)
}

// Login вход пользователя
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeJSON(w, r, h.Logger, "Login", &req) {
		return
	}

	user, err := h.UserService.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, h.Logger, "Login", err)
		return
	}
	h.issueToken(w, user)
}

func (h *UserHandler) issueToken(w http.ResponseWriter, user *model.User) {
	token, err := middleware.SetLoginCookie(w, user.ID, user.Role, h.Config.AuthSecret)
	if err != nil {
		h.Logger.Errorw("failed to issue token", "user_id", user.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// Me текущий пользователь
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := caller(r)
	user, err := h.UserService.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, "Me", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
