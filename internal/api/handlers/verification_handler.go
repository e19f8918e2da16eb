// internal/api/handlers/verification_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/viniciusmt/conciliaspc/internal/api/responses"
	"github.com/viniciusmt/conciliaspc/internal/core/verificacao"
	"github.com/viniciusmt/conciliaspc/internal/storage"
)

// VerificationHandler expõe o relatório de conciliação e o detalhamento de
// divergências de um arquivo importado.
type VerificationHandler struct {
	service verificacao.Service
}

func NewVerificationHandler(service verificacao.Service) *VerificationHandler {
	return &VerificationHandler{service: service}
}

func (h *VerificationHandler) HandleVerification(c *gin.Context) {
	id := c.Param("id")
	if c.Query("recalcular") == "true" {
		h.service.InvalidarCache(id)
	}

	relatorio, err := h.service.Verificar(c.Request.Context(), id)
	if errors.Is(err, storage.ErrArquivoNaoEncontrado) {
		responses.Error(c, http.StatusNotFound, "Arquivo de importação não encontrado")
		return
	}
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao verificar o arquivo", err.Error())
		return
	}

	c.JSON(http.StatusOK, relatorio)
}

func (h *VerificationHandler) HandleDivergences(c *gin.Context) {
	divergencias, err := h.service.VerificarDivergencias(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrArquivoNaoEncontrado) {
		responses.Error(c, http.StatusNotFound, "Arquivo de importação não encontrado")
		return
	}
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao detalhar divergências", err.Error())
		return
	}

	c.JSON(http.StatusOK, divergencias)
}
