package handler

import (
	"errors"
	"net/http"

	"coedit/internal/auth/model"
	"coedit/internal/auth/service"
	"coedit/pkg/apperror"
	"coedit/pkg/logger"
	"coedit/pkg/request"
	"coedit/pkg/response"
)

type AuthHandler struct {
	Service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{Service: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, token, err := h.Service.Register(req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	logger.Sugar.Infof("Registered user %d", user.ID)
	response.JSON(w, http.StatusCreated, model.RegisterResponse{
		Message:  "User registered successfully!",
		Token:    token,
		Username: user.Username,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	token, username, err := h.Service.Login(req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, model.LoginResponse{Token: token, Username: username})
}

func writeDecodeError(w http.ResponseWriter, err error) {
	if request.TooLarge(err) {
		response.Error(w, http.StatusRequestEntityTooLarge, "message", "Request body too large")
		return
	}
	response.Error(w, http.StatusBadRequest, "message", "All fields are required.")
}

func (h *AuthHandler) writeError(w http.ResponseWriter, err error) {
	status := apperror.StatusCode(err)
	switch {
	case errors.Is(err, apperror.ErrValidation):
		response.Error(w, status, "message", "All fields are required.")
	case errors.Is(err, apperror.ErrEmailConflict):
		response.Error(w, status, "message", "Email already in use.")
	case errors.Is(err, apperror.ErrInvalidCredentials):
		response.Error(w, status, "message", "Invalid credentials")
	default:
		logger.Sugar.Errorf("Handler: auth request failed: %v", err)
		response.Error(w, http.StatusInternalServerError, "message", response.InternalMessage)
	}
}
