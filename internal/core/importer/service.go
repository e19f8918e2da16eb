// internal/core/importer/service.go
package importer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/viniciusmt/conciliaspc/internal/domain"
	"github.com/viniciusmt/conciliaspc/internal/storage"
)

// Service importa arquivos posicionais do SPC. Linhas malformadas, tags
// desconhecidas e itens órfãos são registrados em log e pulados; o lote
// inteiro só falha se a leitura do stream falhar.
type Service interface {
	ImportarArquivo(ctx context.Context, arquivo io.Reader, nomeArquivo string) (*domain.ArquivoImportacao, error)
}

type service struct {
	repo storage.Repository
	log  *zap.SugaredLogger
}

// NewService cria o serviço de importação.
func NewService(repo storage.Repository, log *zap.SugaredLogger) Service {
	return &service{repo: repo, log: log}
}

// ImportarArquivo monta o agregado a partir das linhas do arquivo e o persiste.
// Mesmo quando a leitura falha no meio, o lote parcial é gravado com status
// ERRO para diagnóstico, e o erro fatal é devolvido ao chamador.
func (s *service) ImportarArquivo(ctx context.Context, arquivo io.Reader, nomeArquivo string) (*domain.ArquivoImportacao, error) {
	lote := &domain.ArquivoImportacao{
		ID:             uuid.NewString(),
		NomeArquivo:    nomeArquivo,
		DataImportacao: time.Now(),
		Status:         domain.StatusImportado,
		Headers:        []domain.RegistroHeader{},
		Parametros:     []domain.RegistroParametros{},
		NotasDebito:    []domain.NotaDebito{},
		Trailers:       []domain.RegistroTrailer{},
	}

	// O arquivo chega em ISO8859-1, como os demais exports bancários.
	decoder := charmap.ISO8859_1.NewDecoder()
	scanner := bufio.NewScanner(decoder.Reader(arquivo))

	// Índice da nota corrente em NotasDebito; itens tipo '4' sempre se
	// anexam a ela. -1 enquanto nenhuma nota foi lida.
	notaAtual := -1
	numeroLinha := 0

	for scanner.Scan() {
		numeroLinha++
		linha := strings.TrimRight(scanner.Text(), "\r")
		if linha == "" {
			continue
		}

		switch []rune(linha)[0] {
		case tagHeader:
			header, err := parseHeader(linha)
			if err != nil {
				s.log.Warnw("header malformado, linha ignorada", "linha", numeroLinha, "erro", err)
				continue
			}
			lote.Headers = append(lote.Headers, header)

		case tagParametros:
			parametros, err := parseParametros(linha)
			if err != nil {
				s.log.Warnw("registro de parâmetros malformado, linha ignorada", "linha", numeroLinha, "erro", err)
				continue
			}
			lote.Parametros = append(lote.Parametros, parametros)

		case tagNota:
			nota, err := parseNotaDebito(linha)
			if err != nil {
				s.log.Warnw("nota de débito malformada, linha ignorada", "linha", numeroLinha, "erro", err)
				continue
			}
			lote.NotasDebito = append(lote.NotasDebito, nota)
			notaAtual = len(lote.NotasDebito) - 1

		case tagItem:
			if notaAtual < 0 {
				s.log.Warnw("item sem nota de débito anterior, linha ignorada", "linha", numeroLinha)
				continue
			}
			item, err := parseItemNota(linha)
			if err != nil {
				s.log.Warnw("item de nota malformado, linha ignorada", "linha", numeroLinha, "erro", err)
				continue
			}
			lote.NotasDebito[notaAtual].Itens = append(lote.NotasDebito[notaAtual].Itens, item)

		case tagTrailer:
			trailer, err := parseTrailer(linha)
			if err != nil {
				s.log.Warnw("trailer malformado, linha ignorada", "linha", numeroLinha, "erro", err)
				continue
			}
			lote.Trailers = append(lote.Trailers, trailer)

		default:
			s.log.Warnw("tipo de registro desconhecido, linha ignorada", "linha", numeroLinha, "tag", string([]rune(linha)[0]))
		}
	}

	var fatal error
	if err := scanner.Err(); err != nil {
		fatal = fmt.Errorf("erro ao ler arquivo %s: %w", nomeArquivo, err)
		lote.Status = domain.StatusErro
	} else {
		lote.Status = domain.StatusProcessado
	}

	if err := s.repo.SalvarArquivo(ctx, lote); err != nil {
		if fatal == nil {
			return lote, err
		}
		s.log.Errorw("falha ao persistir lote parcial", "arquivo", nomeArquivo, "erro", err)
	}
	return lote, fatal
}
