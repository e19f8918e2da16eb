// internal/domain/models.go
package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Valor representa um valor monetário em centavos (decimal implícito de duas
// casas, como vem no arquivo SPC). Somas e comparações são exatas.
type Valor int64

// Float64 retorna o valor em reais.
func (v Valor) Float64() float64 {
	return float64(v) / 100
}

func (v Valor) String() string {
	neg := ""
	c := int64(v)
	if c < 0 {
		neg = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", neg, c/100, c%100)
}

// MarshalJSON serializa o valor como número decimal com duas casas.
func (v Valor) MarshalJSON() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalJSON aceita o número decimal produzido por MarshalJSON.
func (v *Valor) UnmarshalJSON(data []byte) error {
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	if f >= 0 {
		*v = Valor(f*100 + 0.5)
	} else {
		*v = Valor(f*100 - 0.5)
	}
	return nil
}

// StatusImportacao define os status possíveis de um arquivo importado.
// A transição é sempre para frente: IMPORTADO → PROCESSADO ou IMPORTADO → ERRO.
type StatusImportacao string

const (
	StatusImportado  StatusImportacao = "IMPORTADO"
	StatusProcessado StatusImportacao = "PROCESSADO"
	StatusErro       StatusImportacao = "ERRO"
)

// ArquivoImportacao é o agregado montado a partir de um arquivo SPC de notas
// de débito. É criado uma única vez por upload e mutado apenas pelo importador.
type ArquivoImportacao struct {
	ID             string           `json:"id" firestore:"id"`
	NomeArquivo    string           `json:"nome_arquivo" firestore:"nomeArquivo"`
	DataImportacao time.Time        `json:"data_importacao" firestore:"dataImportacao"`
	Status         StatusImportacao `json:"status" firestore:"status"`

	Headers     []RegistroHeader     `json:"headers" firestore:"headers"`
	Parametros  []RegistroParametros `json:"parametros" firestore:"parametros"`
	NotasDebito []NotaDebito         `json:"notas_debito" firestore:"-"`
	Trailers    []RegistroTrailer    `json:"trailers" firestore:"trailers"`
}

// RegistroHeader é o registro tipo '0' do arquivo (metadados da entidade e do
// próprio arquivo).
type RegistroHeader struct {
	DataGravacao  string `json:"data_gravacao" firestore:"dataGravacao"`
	NomeArquivo   string `json:"nome_arquivo" firestore:"nomeArquivo"`
	DataRefFatura string `json:"data_ref_fatura" firestore:"dataRefFatura"`
	NomeEntidade  string `json:"nome_entidade" firestore:"nomeEntidade"`
	CnpjEntidade  string `json:"cnpj_entidade" firestore:"cnpjEntidade"`
}

// RegistroParametros é o registro tipo '1' (parâmetros de cobrança do lote).
type RegistroParametros struct {
	DataReferencia    string `json:"data_referencia" firestore:"dataReferencia"`
	ValorVencimento1  Valor  `json:"valor_vencimento_1" firestore:"valorVencimento1"`
	DataVencimento1   string `json:"data_vencimento_1" firestore:"dataVencimento1"`
	PercentualMulta   Valor  `json:"percentual_multa" firestore:"percentualMulta"`
	ValorMinimoFatura Valor  `json:"valor_minimo_fatura" firestore:"valorMinimoFatura"`
}

// RegistroTrailer é o registro tipo '9' (totais de controle do arquivo).
type RegistroTrailer struct {
	TotalRegistros int   `json:"total_registros" firestore:"totalRegistros"`
	TotalBoletos   int   `json:"total_boletos" firestore:"totalBoletos"`
	ValorTotal     Valor `json:"valor_total" firestore:"valorTotal"`
}

// NotaDebito é o registro tipo '3', com os itens tipo '4' anexados na ordem em
// que aparecem no arquivo. Itens nunca é nil: uma nota sem itens fica com a
// lista vazia, o que por si só é sinal de inconsistência na verificação.
type NotaDebito struct {
	DataVencimento string `json:"data_vencimento" firestore:"dataVencimento"`
	NumeroFatura   string `json:"numero_fatura" firestore:"numeroFatura"`
	NumeroNota     string `json:"numero_nota" firestore:"numeroNota"`
	ValorNota      Valor  `json:"valor_nota" firestore:"valorNota"`
	CodigoDevedor  string `json:"codigo_devedor" firestore:"codigoDevedor"`
	NomeDevedor    string `json:"nome_devedor" firestore:"nomeDevedor"`
	// TipoPessoa é 'F' (física, CPF de 11 dígitos) ou 'J' (jurídica, CNPJ de 14).
	TipoPessoa string `json:"tipo_pessoa" firestore:"tipoPessoa"`
	// Documento guarda exatamente os N últimos caracteres do campo bruto,
	// sem remover zeros à esquerda.
	Documento string `json:"documento" firestore:"documento"`

	Logradouro string `json:"logradouro,omitempty" firestore:"logradouro"`
	Cidade     string `json:"cidade,omitempty" firestore:"cidade"`
	UF         string `json:"uf,omitempty" firestore:"uf"`
	CEP        string `json:"cep,omitempty" firestore:"cep"`

	Itens []ItemNota `json:"itens" firestore:"itens"`
}

// ItemNota é o registro tipo '4', sempre filho da nota de débito mais recente.
type ItemNota struct {
	Quantidade     int    `json:"quantidade" firestore:"quantidade"`
	Descricao      string `json:"descricao" firestore:"descricao"`
	ValorUnitario  Valor  `json:"valor_unitario" firestore:"valorUnitario"`
	ValorTotal     Valor  `json:"valor_total" firestore:"valorTotal"`
	TipoLancamento string `json:"tipo_lancamento" firestore:"tipoLancamento"` // "C" ou "D"
	CodigoProduto  string `json:"codigo_produto" firestore:"codigoProduto"`
}

// ResultadoVerificacao é o resultado de uma única verificação de conciliação.
// Nunca é persistido; vive apenas dentro do relatório.
type ResultadoVerificacao struct {
	Categoria      string            `json:"categoria"`
	QtdArquivo     int64             `json:"qtd_arquivo"`
	QtdBase        int64             `json:"qtd_base"`
	DiferencaQtd   int64             `json:"diferenca_qtd"`
	ValorArquivo   Valor             `json:"valor_arquivo"`
	ValorBase      Valor             `json:"valor_base"`
	DiferencaValor Valor             `json:"diferenca_valor"`
	Divergente     bool              `json:"divergente"`
	Detalhes       map[string]string `json:"detalhes,omitempty"`
}

// RelatorioVerificacao consolida as seis verificações de um arquivo importado.
type RelatorioVerificacao struct {
	ArquivoID             string                 `json:"arquivo_id"`
	NomeArquivo           string                 `json:"nome_arquivo"`
	Status                StatusImportacao       `json:"status"`
	Resultados            []ResultadoVerificacao `json:"resultados"`
	Divergente            bool                   `json:"divergente"`
	CategoriasDivergentes int                    `json:"categorias_divergentes"`
	TaxaSucesso           float64                `json:"taxa_sucesso"`
	PontuacaoConfianca    float64                `json:"pontuacao_confianca"`
	NivelConfianca        string                 `json:"nivel_confianca"`
	GeradoEm              time.Time              `json:"gerado_em"`
}

// DivergenciaChaves é o detalhamento de divergências item a item entre as
// chaves derivadas do arquivo e as cadastradas na base.
type DivergenciaChaves struct {
	AssociadosNovos    []string `json:"associados_novos"`
	AssociadosAusentes []string `json:"associados_ausentes"`
	ProdutosNovos      []string `json:"produtos_novos"`
	ProdutosAusentes   []string `json:"produtos_ausentes"`
}
