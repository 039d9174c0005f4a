package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"presence/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session, err := h.d.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":        session.Tokens.AccessToken,
		"refreshToken": session.Tokens.RefreshToken,
		"expiresAt":    session.Tokens.AccessExp.Unix(),
		"email":        session.Email,
		"fullName":     session.FullName,
	})
}

func (h *Handler) validate(c *gin.Context) {
	claims, _ := auth.ClaimsFrom(c)
	c.JSON(http.StatusOK, gin.H{"valid": true, "subject": claims.Subject, "role": claims.Role})
}
