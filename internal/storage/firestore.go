// internal/storage/firestore.go
package storage

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/viniciusmt/conciliaspc/internal/domain"
)

// ErrArquivoNaoEncontrado indica que o id de importação não existe na base.
var ErrArquivoNaoEncontrado = errors.New("arquivo de importação não encontrado")

const (
	colecaoImportacoes = "importacoes"
	colecaoNotas       = "notas"
	colecaoAssociados  = "associados"
	colecaoProdutos    = "produtos"
)

// Repository é o gateway de persistência da conciliação. A implementação
// Firestore é segura para leituras concorrentes: cada verificação dispara suas
// próprias consultas sem compartilhar transação.
type Repository interface {
	// SalvarArquivo grava o agregado completo (inclusive parcial, quando a
	// importação terminou em erro).
	SalvarArquivo(ctx context.Context, arquivo *domain.ArquivoImportacao) error
	// BuscarArquivoPorID devolve o agregado persistido com as notas na ordem
	// original do arquivo, ou ErrArquivoNaoEncontrado.
	BuscarArquivoPorID(ctx context.Context, id string) (*domain.ArquivoImportacao, error)

	ContarAssociadosAtivos(ctx context.Context) (int64, error)
	ContarProdutosAtivos(ctx context.Context) (int64, error)
	ListarDocumentosAssociadosAtivos(ctx context.Context) ([]string, error)
	ListarCodigosProdutosAtivos(ctx context.Context) ([]string, error)

	// AgregarNotas devolve quantidade e soma de valor das notas persistidas
	// de um arquivo.
	AgregarNotas(ctx context.Context, arquivoID string) (int64, domain.Valor, error)
	// SomarValorItens devolve a soma do valor total dos itens persistidos.
	SomarValorItens(ctx context.Context, arquivoID string) (domain.Valor, error)
}

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository cria o gateway de persistência sobre o Firestore.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) SalvarArquivo(ctx context.Context, arquivo *domain.ArquivoImportacao) error {
	docArquivo := r.client.Collection(colecaoImportacoes).Doc(arquivo.ID)
	if _, err := docArquivo.Set(ctx, arquivo); err != nil {
		return fmt.Errorf("erro ao gravar arquivo de importação: %w", err)
	}

	// As notas vão em subcoleção, uma por documento, com o índice de ordem no
	// próprio id para preservar a sequência do arquivo.
	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(arquivo.NotasDebito))
	for i := range arquivo.NotasDebito {
		ref := docArquivo.Collection(colecaoNotas).Doc(fmt.Sprintf("%06d", i))
		job, err := bw.Set(ref, &arquivo.NotasDebito[i])
		if err != nil {
			return fmt.Errorf("erro ao enfileirar nota %d: %w", i, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()
	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("erro ao gravar nota %d: %w", i, err)
		}
	}
	return nil
}

func (r *firestoreRepository) BuscarArquivoPorID(ctx context.Context, id string) (*domain.ArquivoImportacao, error) {
	docArquivo := r.client.Collection(colecaoImportacoes).Doc(id)
	snap, err := docArquivo.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrArquivoNaoEncontrado
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar arquivo de importação: %w", err)
	}

	var arquivo domain.ArquivoImportacao
	if err := snap.DataTo(&arquivo); err != nil {
		return nil, fmt.Errorf("erro ao ler arquivo de importação: %w", err)
	}
	arquivo.ID = id

	arquivo.NotasDebito = []domain.NotaDebito{}
	it := docArquivo.Collection(colecaoNotas).OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer it.Stop()
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao ler notas do arquivo: %w", err)
		}
		var nota domain.NotaDebito
		if err := doc.DataTo(&nota); err != nil {
			return nil, fmt.Errorf("erro ao ler nota de débito: %w", err)
		}
		if nota.Itens == nil {
			nota.Itens = []domain.ItemNota{}
		}
		arquivo.NotasDebito = append(arquivo.NotasDebito, nota)
	}
	return &arquivo, nil
}

func (r *firestoreRepository) ContarAssociadosAtivos(ctx context.Context) (int64, error) {
	return r.contarAtivos(ctx, colecaoAssociados)
}

func (r *firestoreRepository) ContarProdutosAtivos(ctx context.Context) (int64, error) {
	return r.contarAtivos(ctx, colecaoProdutos)
}

func (r *firestoreRepository) contarAtivos(ctx context.Context, colecao string) (int64, error) {
	query := r.client.Collection(colecao).Where("ativo", "==", true)
	resultado, err := query.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("erro ao contar documentos ativos em %s: %w", colecao, err)
	}
	total, ok := resultado["total"]
	if !ok {
		return 0, fmt.Errorf("agregação sem resultado para %s", colecao)
	}
	return total.(*firestorepb.Value).GetIntegerValue(), nil
}

func (r *firestoreRepository) ListarDocumentosAssociadosAtivos(ctx context.Context) ([]string, error) {
	return r.listarCampoAtivos(ctx, colecaoAssociados, "documento")
}

func (r *firestoreRepository) ListarCodigosProdutosAtivos(ctx context.Context) ([]string, error) {
	return r.listarCampoAtivos(ctx, colecaoProdutos, "codigo")
}

func (r *firestoreRepository) listarCampoAtivos(ctx context.Context, colecao, campo string) ([]string, error) {
	it := r.client.Collection(colecao).Where("ativo", "==", true).Select(campo).Documents(ctx)
	defer it.Stop()

	var valores []string
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao listar %s de %s: %w", campo, colecao, err)
		}
		if v, err := doc.DataAt(campo); err == nil {
			if s, ok := v.(string); ok && s != "" {
				valores = append(valores, s)
			}
		}
	}
	return valores, nil
}

func (r *firestoreRepository) AgregarNotas(ctx context.Context, arquivoID string) (int64, domain.Valor, error) {
	notas := r.client.Collection(colecaoImportacoes).Doc(arquivoID).Collection(colecaoNotas)
	resultado, err := notas.Query.NewAggregationQuery().
		WithCount("qtd").
		WithSum("valorNota", "total").
		Get(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("erro ao agregar notas do arquivo %s: %w", arquivoID, err)
	}

	qtd := resultado["qtd"].(*firestorepb.Value).GetIntegerValue()
	total := resultado["total"].(*firestorepb.Value)

	// A soma de um campo inteiro volta como inteiro, mas o servidor pode
	// promover para double; os dois casos representam centavos.
	var valor domain.Valor
	switch t := total.GetValueType().(type) {
	case *firestorepb.Value_IntegerValue:
		valor = domain.Valor(t.IntegerValue)
	case *firestorepb.Value_DoubleValue:
		valor = domain.Valor(int64(t.DoubleValue + 0.5))
	}
	return qtd, valor, nil
}

func (r *firestoreRepository) SomarValorItens(ctx context.Context, arquivoID string) (domain.Valor, error) {
	// Itens ficam embutidos no documento da nota; a soma é feita no cliente.
	it := r.client.Collection(colecaoImportacoes).Doc(arquivoID).Collection(colecaoNotas).Documents(ctx)
	defer it.Stop()

	var soma domain.Valor
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("erro ao somar itens do arquivo %s: %w", arquivoID, err)
		}
		var nota domain.NotaDebito
		if err := doc.DataTo(&nota); err != nil {
			return 0, fmt.Errorf("erro ao ler nota de débito: %w", err)
		}
		for _, item := range nota.Itens {
			soma += item.ValorTotal
		}
	}
	return soma, nil
}
