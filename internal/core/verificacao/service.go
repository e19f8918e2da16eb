// internal/core/verificacao/service.go
package verificacao

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/viniciusmt/conciliaspc/internal/domain"
	"github.com/viniciusmt/conciliaspc/internal/storage"
)

// Categorias de verificação, na ordem fixa em que aparecem no relatório.
const (
	CategoriaAssociados   = "Associados"
	CategoriaProdutos     = "Produtos"
	CategoriaValorTotal   = "Valor Total"
	CategoriaNotasDebito  = "Notas de Débito"
	CategoriaConsistencia = "Consistência de Dados"
	CategoriaEstrutura    = "Estrutura do Arquivo"
)

// Service é o motor de conciliação. Verificar é idempotente: chamadas
// repetidas sem mudança na base devolvem relatórios equivalentes, podendo vir
// do cache. O cache é otimização; InvalidarCache força o recálculo.
type Service interface {
	Verificar(ctx context.Context, arquivoID string) (*domain.RelatorioVerificacao, error)
	VerificarDivergencias(ctx context.Context, arquivoID string) (*domain.DivergenciaChaves, error)
	InvalidarCache(arquivoID string)
}

type service struct {
	repo  storage.Repository
	log   *zap.SugaredLogger
	cache *relatorioCache
}

// NewService cria o serviço de verificação.
func NewService(repo storage.Repository, log *zap.SugaredLogger) Service {
	return &service{repo: repo, log: log, cache: newRelatorioCache()}
}

type verificador func(context.Context, *domain.ArquivoImportacao) (domain.ResultadoVerificacao, error)

func (s *service) Verificar(ctx context.Context, arquivoID string) (*domain.RelatorioVerificacao, error) {
	if relatorio, ok := s.cache.buscar(arquivoID); ok {
		return relatorio, nil
	}

	arquivo, err := s.repo.BuscarArquivoPorID(ctx, arquivoID)
	if err != nil {
		return nil, err
	}

	verificacoes := []struct {
		categoria string
		executar  verificador
	}{
		{CategoriaAssociados, s.verificarAssociados},
		{CategoriaProdutos, s.verificarProdutos},
		{CategoriaValorTotal, s.verificarValorTotal},
		{CategoriaNotasDebito, s.verificarNotasDebito},
		{CategoriaConsistencia, s.verificarConsistencia},
		{CategoriaEstrutura, s.verificarEstrutura},
	}

	// As seis verificações são independentes e só leem: cada goroutine grava
	// seu resultado no índice da própria categoria, então a ordem do relatório
	// é a ordem de declaração, não a de término.
	resultados := make([]domain.ResultadoVerificacao, len(verificacoes))
	var wg sync.WaitGroup
	for i, v := range verificacoes {
		wg.Add(1)
		go func(idx int, categoria string, executar verificador) {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					s.log.Errorw("pânico em verificação", "categoria", categoria, "panico", p)
					resultados[idx] = resultadoFalha(categoria, fmt.Errorf("pânico na verificação: %v", p))
				}
			}()

			resultado, err := executar(ctx, arquivo)
			if err != nil {
				s.log.Warnw("verificação falhou", "categoria", categoria, "erro", err)
				resultado = resultadoFalha(categoria, err)
			}
			resultados[idx] = resultado
		}(i, v.categoria, v.executar)
	}
	wg.Wait()

	relatorio := montarRelatorio(arquivo, resultados)
	s.cache.guardar(arquivoID, relatorio)
	return relatorio, nil
}

// InvalidarCache descarta o relatório calculado para o arquivo, forçando a
// próxima chamada de Verificar a recomputar.
func (s *service) InvalidarCache(arquivoID string) {
	s.cache.invalidar(arquivoID)
}

// resultadoFalha converte uma falha interna de verificação em resultado
// divergente, sem propagar o erro para as demais categorias.
func resultadoFalha(categoria string, err error) domain.ResultadoVerificacao {
	return domain.ResultadoVerificacao{
		Categoria:  categoria,
		Divergente: true,
		Detalhes:   map[string]string{"erro": err.Error()},
	}
}

func montarRelatorio(arquivo *domain.ArquivoImportacao, resultados []domain.ResultadoVerificacao) *domain.RelatorioVerificacao {
	divergentes := 0
	for _, r := range resultados {
		if r.Divergente {
			divergentes++
		}
	}

	pontuacao, nivel := calcularPontuacao(resultados)
	total := len(resultados)

	return &domain.RelatorioVerificacao{
		ArquivoID:             arquivo.ID,
		NomeArquivo:           arquivo.NomeArquivo,
		Status:                arquivo.Status,
		Resultados:            resultados,
		Divergente:            divergentes > 0,
		CategoriasDivergentes: divergentes,
		TaxaSucesso:           float64(total-divergentes) / float64(total) * 100,
		PontuacaoConfianca:    pontuacao,
		NivelConfianca:        nivel,
		GeradoEm:              time.Now(),
	}
}

// verificarAssociados concilia devedores distintos do arquivo com os
// associados ativos cadastrados.
func (s *service) verificarAssociados(ctx context.Context, arquivo *domain.ArquivoImportacao) (domain.ResultadoVerificacao, error) {
	qtdArquivo := int64(len(documentosDoArquivo(arquivo)))
	qtdBase, err := s.repo.ContarAssociadosAtivos(ctx)
	if err != nil {
		return domain.ResultadoVerificacao{}, err
	}

	return domain.ResultadoVerificacao{
		Categoria:    CategoriaAssociados,
		QtdArquivo:   qtdArquivo,
		QtdBase:      qtdBase,
		DiferencaQtd: qtdArquivo - qtdBase,
		Divergente:   qtdArquivo != qtdBase,
	}, nil
}

// verificarProdutos concilia códigos de produto distintos dos itens com os
// produtos ativos cadastrados.
func (s *service) verificarProdutos(ctx context.Context, arquivo *domain.ArquivoImportacao) (domain.ResultadoVerificacao, error) {
	qtdArquivo := int64(len(produtosDoArquivo(arquivo)))
	qtdBase, err := s.repo.ContarProdutosAtivos(ctx)
	if err != nil {
		return domain.ResultadoVerificacao{}, err
	}

	return domain.ResultadoVerificacao{
		Categoria:    CategoriaProdutos,
		QtdArquivo:   qtdArquivo,
		QtdBase:      qtdBase,
		DiferencaQtd: qtdArquivo - qtdBase,
		Divergente:   qtdArquivo != qtdBase,
	}, nil
}

// verificarValorTotal compara a soma dos itens do lote em memória com a soma
// persistida. Os valores já estão em centavos, então a igualdade é exata.
func (s *service) verificarValorTotal(ctx context.Context, arquivo *domain.ArquivoImportacao) (domain.ResultadoVerificacao, error) {
	var valorArquivo domain.Valor
	for _, nota := range arquivo.NotasDebito {
		for _, item := range nota.Itens {
			valorArquivo += item.ValorTotal
		}
	}

	valorBase, err := s.repo.SomarValorItens(ctx, arquivo.ID)
	if err != nil {
		return domain.ResultadoVerificacao{}, err
	}

	return domain.ResultadoVerificacao{
		Categoria:      CategoriaValorTotal,
		ValorArquivo:   valorArquivo,
		ValorBase:      valorBase,
		DiferencaValor: valorArquivo - valorBase,
		Divergente:     valorArquivo != valorBase,
	}, nil
}

// verificarNotasDebito compara quantidade e valor das notas do lote com os
// equivalentes persistidos.
func (s *service) verificarNotasDebito(ctx context.Context, arquivo *domain.ArquivoImportacao) (domain.ResultadoVerificacao, error) {
	qtdArquivo := int64(len(arquivo.NotasDebito))
	var valorArquivo domain.Valor
	for _, nota := range arquivo.NotasDebito {
		valorArquivo += nota.ValorNota
	}

	qtdBase, valorBase, err := s.repo.AgregarNotas(ctx, arquivo.ID)
	if err != nil {
		return domain.ResultadoVerificacao{}, err
	}

	return domain.ResultadoVerificacao{
		Categoria:      CategoriaNotasDebito,
		QtdArquivo:     qtdArquivo,
		QtdBase:        qtdBase,
		DiferencaQtd:   qtdArquivo - qtdBase,
		ValorArquivo:   valorArquivo,
		ValorBase:      valorBase,
		DiferencaValor: valorArquivo - valorBase,
		Divergente:     qtdArquivo != qtdBase || valorArquivo != valorBase,
	}, nil
}

// verificarConsistencia aplica as checagens estruturais internas do próprio
// arquivo, sem consultar a base.
func (s *service) verificarConsistencia(_ context.Context, arquivo *domain.ArquivoImportacao) (domain.ResultadoVerificacao, error) {
	var notasSemItens, itensValorZero, documentosInvalidos, notasDuplicadas int64

	vistos := make(map[string]int)
	for _, nota := range arquivo.NotasDebito {
		if len(nota.Itens) == 0 {
			notasSemItens++
		}
		for _, item := range nota.Itens {
			if item.ValorTotal == 0 {
				itensValorZero++
			}
		}
		if !documentoValido(nota.Documento) {
			documentosInvalidos++
		}
		if nota.NumeroNota != "" {
			vistos[nota.NumeroNota]++
		}
	}
	for _, ocorrencias := range vistos {
		if ocorrencias > 1 {
			notasDuplicadas++
		}
	}

	detalhes := make(map[string]string)
	if notasSemItens > 0 {
		detalhes["notas_sem_itens"] = strconv.FormatInt(notasSemItens, 10)
	}
	if itensValorZero > 0 {
		detalhes["itens_valor_zero"] = strconv.FormatInt(itensValorZero, 10)
	}
	if documentosInvalidos > 0 {
		detalhes["documentos_invalidos"] = strconv.FormatInt(documentosInvalidos, 10)
	}
	if notasDuplicadas > 0 {
		detalhes["notas_duplicadas"] = strconv.FormatInt(notasDuplicadas, 10)
	}

	totalSinais := notasSemItens + itensValorZero + documentosInvalidos + notasDuplicadas
	resultado := domain.ResultadoVerificacao{
		Categoria:  CategoriaConsistencia,
		QtdArquivo: totalSinais,
		Divergente: totalSinais > 0,
	}
	if len(detalhes) > 0 {
		resultado.Detalhes = detalhes
	}
	return resultado, nil
}

// verificarEstrutura valida a presença das seções obrigatórias do arquivo.
func (s *service) verificarEstrutura(_ context.Context, arquivo *domain.ArquivoImportacao) (domain.ResultadoVerificacao, error) {
	detalhes := make(map[string]string)
	if len(arquivo.Headers) == 0 {
		detalhes["header"] = "Header não encontrado"
	}
	if len(arquivo.Trailers) == 0 {
		detalhes["trailer"] = "Trailer não encontrado"
	}
	if len(arquivo.NotasDebito) == 0 {
		detalhes["notas"] = "Nenhuma nota de débito encontrada"
	}
	totalItens := 0
	for _, nota := range arquivo.NotasDebito {
		totalItens += len(nota.Itens)
	}
	if totalItens == 0 {
		detalhes["itens"] = "Nenhum item de nota encontrado"
	}

	resultado := domain.ResultadoVerificacao{
		Categoria:  CategoriaEstrutura,
		QtdArquivo: int64(len(detalhes)),
		Divergente: len(detalhes) > 0,
	}
	if len(detalhes) > 0 {
		resultado.Detalhes = detalhes
	}
	return resultado, nil
}

// documentoValido confere se o documento tem 11 ou 14 dígitos depois de
// remover qualquer caractere que não seja dígito.
func documentoValido(documento string) bool {
	var digitos strings.Builder
	for _, r := range documento {
		if r >= '0' && r <= '9' {
			digitos.WriteRune(r)
		}
	}
	return digitos.Len() == 11 || digitos.Len() == 14
}

// documentosDoArquivo devolve o conjunto de documentos de devedor distintos e
// não vazios do lote.
func documentosDoArquivo(arquivo *domain.ArquivoImportacao) map[string]struct{} {
	documentos := make(map[string]struct{})
	for _, nota := range arquivo.NotasDebito {
		if nota.Documento != "" {
			documentos[nota.Documento] = struct{}{}
		}
	}
	return documentos
}

// produtosDoArquivo devolve o conjunto de códigos de produto distintos e não
// vazios dos itens do lote.
func produtosDoArquivo(arquivo *domain.ArquivoImportacao) map[string]struct{} {
	produtos := make(map[string]struct{})
	for _, nota := range arquivo.NotasDebito {
		for _, item := range nota.Itens {
			if item.CodigoProduto != "" {
				produtos[item.CodigoProduto] = struct{}{}
			}
		}
	}
	return produtos
}

// relatorioCache guarda relatórios por id de arquivo. Leitura predominante;
// a invalidação é sempre explícita, disparada pelo chamador.
type relatorioCache struct {
	mu       sync.RWMutex
	entradas map[string]*domain.RelatorioVerificacao
}

func newRelatorioCache() *relatorioCache {
	return &relatorioCache{entradas: make(map[string]*domain.RelatorioVerificacao)}
}

func (c *relatorioCache) buscar(arquivoID string) (*domain.RelatorioVerificacao, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	relatorio, ok := c.entradas[arquivoID]
	return relatorio, ok
}

func (c *relatorioCache) guardar(arquivoID string, relatorio *domain.RelatorioVerificacao) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entradas[arquivoID] = relatorio
}

func (c *relatorioCache) invalidar(arquivoID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entradas, arquivoID)
}
