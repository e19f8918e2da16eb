// internal/api/responses/responses.go
package responses

import (
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var logger *zap.Logger

// InitLogger inicializa o logger global da aplicação. Usa configuração de
// produção (JSON) por padrão; LOG_DEV=true troca para o formato de console.
func InitLogger() {
	var err error
	if os.Getenv("LOG_DEV") == "true" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic("não foi possível inicializar o logger: " + err.Error())
	}
	zap.ReplaceGlobals(logger)
}

// Logger devolve o logger da aplicação.
func Logger() *zap.Logger {
	if logger == nil {
		InitLogger()
	}
	return logger
}

// Error responde com o envelope de erro padrão da API e registra o detalhe em
// log quando presente.
func Error(c *gin.Context, httpStatus int, mensagem string, detalhes ...string) {
	if len(detalhes) > 0 {
		Logger().Warn(mensagem,
			zap.String("detalhe", detalhes[0]),
			zap.String("rota", c.FullPath()),
			zap.Int("status", httpStatus),
		)
		c.JSON(httpStatus, gin.H{"error": mensagem, "detalhe": detalhes[0]})
		return
	}
	c.JSON(httpStatus, gin.H{"error": mensagem})
}
