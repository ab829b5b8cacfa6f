package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/logging"
	"github.com/globalmarket/backend/internal/models"
	"github.com/globalmarket/backend/internal/mykafka"
	"github.com/globalmarket/backend/internal/service/auth"
	"github.com/globalmarket/backend/internal/service/token"
)

type AuthHandler struct {
	DB       *gorm.DB
	Auth     *auth.Service
	Tokens   *token.TokenService
	Producer *mykafka.Producer
}

func NewAuthHandler(db *gorm.DB, a *auth.Service, t *token.TokenService, p *mykafka.Producer) *AuthHandler {
	return &AuthHandler{DB: db, Auth: a, Tokens: t, Producer: p}
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	if err := h.Producer.PublishEvent(c.Request().Context(), mykafka.TopicUserEvents, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("publish user event", "error", err)
	}
}

func (h *AuthHandler) issueCookies(c echo.Context, userID uint, role string) (string, error) {
	access, err := h.Tokens.SignAccessToken(userID, role)
	if err != nil {
		return "", err
	}
	refresh, err := h.Tokens.SignRefreshToken(userID, role)
	if err != nil {
		return "", err
	}
	c.SetCookie(token.NewCookie("accessToken", access, "/", time.Now().Add(token.AccessTTL)))
	c.SetCookie(token.NewCookie("refreshToken", refresh, "/", time.Now().Add(token.RefreshTTL)))
	return access, nil
}

func (h *AuthHandler) Register(c echo.Context) error {
	var creds auth.Credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	user, err := h.Auth.SignUpUser(c.Request().Context(), creds)
	if err != nil {
		return err
	}
	access, err := h.issueCookies(c, user.ID, token.PrimaryRole(user))
	if err != nil {
		return err
	}
	h.publish(c, "user_registered", map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
	return c.JSON(http.StatusCreated, echo.Map{"user": user, "token": access})
}

func (h *AuthHandler) RegisterAdmin(c echo.Context) error {
	var creds auth.Credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	user, err := h.Auth.SignUpAdmin(c.Request().Context(), creds)
	if err != nil {
		return err
	}
	access, err := h.issueCookies(c, user.ID, token.PrimaryRole(user))
	if err != nil {
		return err
	}
	h.publish(c, "admin_registered", map[string]any{"user_id": user.ID, "email": user.Email})
	return c.JSON(http.StatusCreated, echo.Map{"user": user, "token": access})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	user, err := h.Auth.SignIn(req.Email, req.Password)
	if err != nil {
		return err
	}
	access, err := h.issueCookies(c, user.ID, token.PrimaryRole(user))
	if err != nil {
		return err
	}
	h.publish(c, "user_logged_in", map[string]any{"user_id": user.ID})
	return c.JSON(http.StatusOK, echo.Map{
		"token":    access,
		"is_admin": user.HasRole(models.RoleAdmin),
	})
}

func (h *AuthHandler) LoginAdmin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	user, err := h.Auth.SignInAdmin(req.Email, req.Password)
	if err != nil {
		return err
	}
	access, err := h.issueCookies(c, user.ID, token.PrimaryRole(user))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"token": access, "is_admin": true})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie("refreshToken"); err == nil {
		if err := h.Tokens.RevokeRefresh(cookie.Value); err != nil {
			logging.FromContext(c.Request().Context()).Error("revoke refresh token", "error", err)
		}
	}
	expired := time.Now().Add(-time.Hour)
	c.SetCookie(token.NewCookie("accessToken", "", "/", expired))
	c.SetCookie(token.NewCookie("refreshToken", "", "/", expired))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	verifyToken := c.Param("token")
	if verifyToken == "" {
		var req struct {
			Token string `json:"token"`
		}
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		verifyToken = req.Token
	}
	user, err := h.Auth.VerifyEmail(verifyToken)
	if err != nil {
		return err
	}
	h.publish(c, "email_verified", map[string]any{"user_id": user.ID, "email": user.Email})
	return c.JSON(http.StatusOK, echo.Map{"message": "email verified"})
}

func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if _, err := h.Auth.CreateEmailToken(req.Email); err != nil {
		return err
	}
	if err := h.Auth.SendEmailVerification(req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "verification email sent"})
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.Auth.SendForgottenPasswordEmail(req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password reset email sent"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.Auth.SetNewPassword(req.Token, req.NewPassword); err != nil {
		return err
	}
	h.publish(c, "password_reset", map[string]any{"at": time.Now().Unix()})
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func (h *AuthHandler) GetUsers(c echo.Context) error {
	users, err := h.Auth.GetSystemUsers()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AuthHandler) GetUsersCount(c echo.Context) error {
	total, err := h.Auth.GetTotalUsers()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total})
}

func (h *AuthHandler) EditRoles(c echo.Context) error {
	var req struct {
		UserID uint     `json:"user_id"`
		Roles  []string `json:"roles"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	user, err := h.Auth.EditUserRoles(req.UserID, req.Roles)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Me(c echo.Context) error {
	user, err := CurrentUser(c, h.DB)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	user, err := CurrentUser(c, h.DB)
	if err != nil {
		return err
	}
	if err := h.Auth.DeleteUserAccount(user); err != nil {
		return err
	}
	h.publish(c, "user_deleted", map[string]any{"user_id": user.ID})
	return h.Logout(c)
}
