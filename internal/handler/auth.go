package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Kipz123/airline-booking-backend/internal/config"
	"github.com/Kipz123/airline-booking-backend/internal/model"
	"github.com/Kipz123/airline-booking-backend/internal/repository"
	"github.com/Kipz123/airline-booking-backend/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  repository.UserRepository
	Tokens repository.TokenRepository
}

func NewAuthHandler(cfg config.Config, u repository.UserRepository, t repository.TokenRepository) *AuthHandler {
	if u == nil || t == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    uint64     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Register creates a CUSTOMER account and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	return h.register(c, model.RoleCustomer)
}

// RegisterAdmin creates an ADMIN account.  The X-Admin-Key header must
// match ADMIN_SIGNUP_KEY; with no key configured the endpoint is closed.
func (h *AuthHandler) RegisterAdmin(c echo.Context) error {
	key := c.Request().Header.Get("X-Admin-Key")
	if h.Cfg.AdminSignupKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.Cfg.AdminSignupKey)) != 1 {
		return c.JSON(http.StatusForbidden, errorBody{Error: "admin registration not allowed", Code: "FORBIDDEN"})
	}
	return h.register(c, model.RoleAdmin)
}

func (h *AuthHandler) register(c echo.Context, role model.Role) error {
	var req registerReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	ctx := c.Request().Context()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		return writeError(c, err)
	}
	u := model.User{ID: uid, Name: strings.TrimSpace(req.Name), Email: req.Email, Role: role}
	resp, err := h.issue(c, u)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// issue creates an access token and a stored refresh token for u.
func (h *AuthHandler) issue(c echo.Context, u model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(c.Request().Context(), u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	u, err := h.Users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return unauthorized(c, "invalid credentials")
		}
		return writeError(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return unauthorized(c, "invalid credentials")
	}
	resp, err := h.issue(c, u)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh validates a refresh token by hash, revokes it and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "INVALID_BODY", "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))
	ctx := c.Request().Context()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return unauthorized(c, "invalid refresh")
	}
	// a concurrent refresh of the same token may have revoked it first
	revoked, err := h.Tokens.RevokeByHash(ctx, hash)
	if err != nil {
		return writeError(c, err)
	}
	if !revoked {
		return unauthorized(c, "invalid refresh")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return unauthorized(c, "invalid refresh")
		}
		return writeError(c, err)
	}
	resp, err := h.issue(c, u)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes one session when the body carries a refresh_token, or
// every session of the caller when only a bearer access token is sent.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)
	ctx := c.Request().Context()

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return unauthorized(c, "invalid refresh token")
		}
		revoked, err := h.Tokens.RevokeByHash(ctx, hash)
		if err != nil {
			return writeError(c, err)
		}
		if !revoked {
			return unauthorized(c, "invalid refresh token")
		}
		return c.NoContent(http.StatusNoContent)
	}

	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		p, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			return unauthorized(c, "invalid token")
		}
		if err := h.Tokens.RevokeAllForUser(ctx, p.UserID); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	return badRequest(c, "INVALID_BODY", "provide Authorization header or refresh_token")
}

// Validate reports whether the bearer access token in the request is valid.
func (h *AuthHandler) Validate(c echo.Context) error {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return unauthorized(c, "missing bearer token")
	}
	p, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	return c.JSON(http.StatusOK, echo.Map{"valid": true, "user_id": p.UserID, "role": p.Role})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	u, err := h.Users.GetByID(c.Request().Context(), p.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
}
