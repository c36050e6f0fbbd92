package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"commentflow.app/engine/internal/http/middleware"
	"commentflow.app/engine/internal/service"
)

const stateCookieName = "commentflow_oauth_state"

type AuthHandler struct {
	authService    service.AuthService
	channelService service.ChannelService
	frontendURL    string
	sessionTTL     time.Duration
	isProduction   bool
}

func NewAuthHandler(
	authService service.AuthService,
	channelService service.ChannelService,
	frontendURL string,
	sessionTTL time.Duration,
	isProduction bool,
) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		channelService: channelService,
		frontendURL:    frontendURL,
		sessionTTL:     sessionTTL,
		isProduction:   isProduction,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	state, err := generateState()
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to generate state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initiate login"})
		return
	}

	c.SetCookie(stateCookieName, state, 600, "/", "", h.isProduction, true)
	c.Redirect(http.StatusTemporaryRedirect, h.authService.AuthorizationURL(state))
}

func (h *AuthHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	if errorParam := c.Query("error"); errorParam != "" {
		slog.WarnContext(ctx, "oauth error", "error", errorParam)
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?auth_error="+errorParam)
		return
	}

	state := c.Query("state")
	storedState, err := c.Cookie(stateCookieName)
	if err != nil || state == "" || state != storedState {
		slog.WarnContext(ctx, "oauth state mismatch")
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?auth_error=invalid_state")
		return
	}
	c.SetCookie(stateCookieName, "", -1, "/", "", h.isProduction, true)

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?auth_error=no_code")
		return
	}

	account, session, err := h.authService.HandleCallback(ctx, code)
	if err != nil {
		slog.ErrorContext(ctx, "oauth callback failed", "error", err)
		if errors.Is(err, service.ErrInvalidCode) {
			c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?auth_error=invalid_code")
			return
		}
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?auth_error=callback_failed")
		return
	}

	c.SetCookie(
		middleware.SessionCookieName,
		strconv.FormatInt(session.ID, 10),
		int(h.sessionTTL.Seconds()),
		"/",
		"",
		h.isProduction,
		true,
	)

	slog.InfoContext(ctx, "account logged in", "account_id", account.ID, "email", account.Email)
	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/dashboard")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		if sessionID, err := strconv.ParseInt(cookie, 10, 64); err == nil {
			if err := h.authService.Logout(ctx, sessionID); err != nil {
				slog.WarnContext(ctx, "failed to delete session", "error", err, "session_id", sessionID)
			}
		}
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.isProduction, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated account together with its live channel
// identity. A missing channel is reported as connected=false, not an error.
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	account := middleware.Account(c)

	resp := gin.H{
		"id":        strconv.FormatInt(account.ID, 10),
		"email":     account.Email,
		"connected": false,
	}

	channel, err := h.channelService.Channel(ctx, account)
	switch {
	case err == nil:
		resp["connected"] = true
		resp["channel"] = gin.H{
			"id":        channel.ID,
			"title":     channel.Title,
			"thumbnail": channel.Thumbnail,
		}
	case errors.Is(err, service.ErrNotConnected):
	default:
		slog.ErrorContext(ctx, "failed to resolve channel", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load channel"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
