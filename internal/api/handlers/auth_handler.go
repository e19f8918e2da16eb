// internal/api/handlers/auth_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/viniciusmt/conciliaspc/internal/api/responses"
	"github.com/viniciusmt/conciliaspc/internal/core/auth"
)

// AuthHandler lida com o login da API.
type AuthHandler struct {
	service auth.Service
}

func NewAuthHandler(service auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type credenciais struct {
	Usuario string `json:"username" binding:"required"`
	Senha   string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var cred credenciais
	if err := c.ShouldBindJSON(&cred); err != nil {
		responses.Error(c, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	token, err := h.service.Login(c.Request.Context(), cred.Usuario, cred.Senha)
	if errors.Is(err, auth.ErrCredenciaisInvalidas) {
		responses.Error(c, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
