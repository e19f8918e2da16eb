// internal/api/handlers/import_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/viniciusmt/conciliaspc/internal/api/responses"
	"github.com/viniciusmt/conciliaspc/internal/core/importer"
	"github.com/viniciusmt/conciliaspc/internal/domain"
)

// ImportHandler lida com o upload de arquivos SPC de notas de débito.
type ImportHandler struct {
	service importer.Service
}

func NewImportHandler(service importer.Service) *ImportHandler {
	return &ImportHandler{service: service}
}

// resumoImportacao é a resposta do upload: identificação do lote e contagens
// do que foi montado.
type resumoImportacao struct {
	ID          string                  `json:"id"`
	NomeArquivo string                  `json:"nome_arquivo"`
	Status      domain.StatusImportacao `json:"status"`
	Headers     int                     `json:"headers"`
	Parametros  int                     `json:"parametros"`
	Notas       int                     `json:"notas"`
	Itens       int                     `json:"itens"`
	Trailers    int                     `json:"trailers"`
}

func (h *ImportHandler) HandleImport(c *gin.Context) {
	arquivoHeader, err := c.FormFile("arquivo")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Arquivo SPC não encontrado ou inválido")
		return
	}
	arquivo, err := arquivoHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo SPC")
		return
	}
	defer arquivo.Close()

	lote, err := h.service.ImportarArquivo(c.Request.Context(), arquivo, arquivoHeader.Filename)
	if err != nil {
		// O lote parcial já foi persistido com status ERRO; o chamador recebe
		// o id para diagnóstico junto com a falha.
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Erro ao processar o arquivo",
			"detalhe":    err.Error(),
			"arquivo_id": lote.ID,
			"status":     lote.Status,
		})
		return
	}

	c.JSON(http.StatusCreated, resumir(lote))
}

func resumir(lote *domain.ArquivoImportacao) resumoImportacao {
	itens := 0
	for _, nota := range lote.NotasDebito {
		itens += len(nota.Itens)
	}
	return resumoImportacao{
		ID:          lote.ID,
		NomeArquivo: lote.NomeArquivo,
		Status:      lote.Status,
		Headers:     len(lote.Headers),
		Parametros:  len(lote.Parametros),
		Notas:       len(lote.NotasDebito),
		Itens:       itens,
		Trailers:    len(lote.Trailers),
	}
}
