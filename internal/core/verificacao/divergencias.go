// internal/core/verificacao/divergencias.go
package verificacao

import (
	"context"
	"sort"

	"github.com/viniciusmt/conciliaspc/internal/domain"
)

// VerificarDivergencias resolve, chave a chave, o que existe no arquivo mas
// não na base e vice-versa, para documentos de associado e códigos de
// produto. É um relatório secundário, sob demanda: não participa do caminho
// principal de Verificar.
func (s *service) VerificarDivergencias(ctx context.Context, arquivoID string) (*domain.DivergenciaChaves, error) {
	arquivo, err := s.repo.BuscarArquivoPorID(ctx, arquivoID)
	if err != nil {
		return nil, err
	}

	documentosBase, err := s.repo.ListarDocumentosAssociadosAtivos(ctx)
	if err != nil {
		return nil, err
	}
	produtosBase, err := s.repo.ListarCodigosProdutosAtivos(ctx)
	if err != nil {
		return nil, err
	}

	associadosNovos, associadosAusentes := diferencaChaves(documentosDoArquivo(arquivo), documentosBase)
	produtosNovos, produtosAusentes := diferencaChaves(produtosDoArquivo(arquivo), produtosBase)

	return &domain.DivergenciaChaves{
		AssociadosNovos:    associadosNovos,
		AssociadosAusentes: associadosAusentes,
		ProdutosNovos:      produtosNovos,
		ProdutosAusentes:   produtosAusentes,
	}, nil
}

// diferencaChaves calcula a diferença de conjuntos nos dois sentidos. As
// listas saem ordenadas para o resultado ser determinístico.
func diferencaChaves(doArquivo map[string]struct{}, daBase []string) (novas, ausentes []string) {
	base := make(map[string]struct{}, len(daBase))
	for _, chave := range daBase {
		base[chave] = struct{}{}
	}

	novas = []string{}
	for chave := range doArquivo {
		if _, ok := base[chave]; !ok {
			novas = append(novas, chave)
		}
	}

	ausentes = []string{}
	for chave := range base {
		if _, ok := doArquivo[chave]; !ok {
			ausentes = append(ausentes, chave)
		}
	}

	sort.Strings(novas)
	sort.Strings(ausentes)
	return novas, ausentes
}
