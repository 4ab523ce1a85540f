package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"virtualevents/internal/delivery/http/helpers"
	"virtualevents/internal/domain"
)

// RegisterRequest is the request body for POST /auth/register.
type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Email           string `json:"email,omitempty"`
}

// Validate implements Validator.
func (req RegisterRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Username) == "" {
		errs = append(errs, "username is required")
	}
	if req.Password == "" {
		errs = append(errs, "password is required")
	}
	if req.ConfirmPassword == "" {
		errs = append(errs, "confirm_password is required")
	}
	return errs
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (req LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Username) == "" {
		errs = append(errs, "username is required")
	}
	if req.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// RecoverPasswordRequest is the request body for POST /auth/password-recovery.
type RecoverPasswordRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Validate implements Validator.
func (req RecoverPasswordRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Username) == "" {
		errs = append(errs, "username is required")
	}
	if req.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginSuccessResponse is the success envelope for POST /auth/login (200).
type LoginSuccessResponse struct {
	Data  *domain.LoginResult `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// UserListSuccessResponse is the success envelope for GET /users (200).
type UserListSuccessResponse struct {
	Data  []*domain.User    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Creates a user. The username must be unused and both password fields must match. Email is optional and only used for notifications.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration form"
// @Success 201 {object} helpers.APIResponse "data contains the created user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (username taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/register [post]
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.Register(r.Context(), domain.RegisterInput{
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Email:           req.Email,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// Login godoc
// @Summary Log in
// @Description Checks the credentials, opens a session and returns a bearer token for it.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} controllers.LoginSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// Logout godoc
// @Summary Log out
// @Description Closes the current session. Its token stops working immediately.
// @Tags auth
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if err := c.Service.Logout(r.Context(), sess); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecoverPassword godoc
// @Summary Reset a password
// @Description Sets a new password for the named user.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RecoverPasswordRequest true "Username and new password"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/password-recovery [post]
func (c *AuthController) RecoverPassword(w http.ResponseWriter, r *http.Request) {
	var req RecoverPasswordRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.RecoverPassword(r.Context(), req.Username, req.Password, req.ConfirmPassword); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers godoc
// @Summary List other users
// @Description Every registered user except the caller, for the attendee picker.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.UserListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users [get]
func (c *AuthController) ListUsers(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	users, err := c.Service.ListOtherUsers(r.Context(), sess)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}
