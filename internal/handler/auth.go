package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-hub/internal/apperr"
	"github.com/iliyamo/community-hub/internal/config"
	"github.com/iliyamo/community-hub/internal/middleware"
	"github.com/iliyamo/community-hub/internal/model"
	"github.com/iliyamo/community-hub/internal/queue"
	"github.com/iliyamo/community-hub/internal/repository"
	"github.com/iliyamo/community-hub/internal/service"
	"github.com/iliyamo/community-hub/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *utils.TokenCodec
	Events service.EventPublisher
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *utils.TokenCodec, ev service.EventPublisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Events: ev}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name" validate:"omitempty,max=64"`
	Email    string `json:"email" validate:"required,email,max=128"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

type signinReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenMeta struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func toUserResp(u *model.User) userResp {
	return userResp{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Signup creates a user and returns it with an access token.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.Cfg.RequestTimeout)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apperr.Exists(http.StatusConflict, "email", "User with this email address already exists.")
		}
		return err
	}
	access, err := h.Tokens.Issue(u.ID)
	if err != nil {
		return err
	}

	ev := queue.NewEvent(queue.TypeUserSignedUp)
	ev.UserID = u.ID
	publish(ctx, h.Events, ev)

	return respond(c, http.StatusOK, toUserResp(u), tokenMeta{AccessToken: access.Token, ExpiresAt: access.Exp})
}

// Signin checks the credentials and returns the user with a fresh access
// token.  Unknown email and wrong password produce the same error.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req signinReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.Cfg.RequestTimeout)
	defer cancel()

	u, err := h.Users.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			return apperr.InvalidCredentials()
		}
		return err
	}
	access, err := h.Tokens.Issue(u.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, toUserResp(u), tokenMeta{AccessToken: access.Token, ExpiresAt: access.Exp})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserIDFrom(c)
	if !ok {
		return apperr.NotSignedIn()
	}

	ctx, cancel := requestContext(c, h.Cfg.RequestTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound(apperr.CodeUserNotFound, "", "User not found.")
		}
		return err
	}
	return respond(c, http.StatusOK, toUserResp(u), nil)
}
