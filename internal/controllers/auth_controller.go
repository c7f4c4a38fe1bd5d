package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"taxi_ledger/internal/apperrors"
	"taxi_ledger/internal/middleware"
)

type loginInput struct {
	Password string `json:"password" binding:"required"`
}

// LoginUser checks the operator password and hands out a token, both in
// the body and as the session cookie.
func (h *Handler) LoginUser(c *gin.Context) {
	if !h.auth.Enabled() {
		c.JSON(http.StatusOK, gin.H{"token": "", "authEnabled": false})
		return
	}

	var body loginInput
	if err := c.ShouldBindJSON(&body); err != nil {
		fields := apperrors.FieldErrors{}
		fields.Add("password", "Password is required")
		respondError(c, apperrors.Validation(fields))
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(body.Password)); err != nil {
		logrus.WithField("client_ip", c.ClientIP()).Warn("Operator login failed.")
		respondError(c, apperrors.New(apperrors.CodeUnauthorized, "Incorrect password"))
		return
	}

	token, exp, err := h.auth.GenerateToken()
	if err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.CodeInternal, "Could not generate token"))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, token, int(time.Until(exp).Seconds()), "/", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, gin.H{"token": token, "expiresAt": exp.UTC()})
}

// LogoutUser clears the session cookie.
func (h *Handler) LogoutUser(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, "", -1, "/", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// HashPassword produces the bcrypt hash for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
