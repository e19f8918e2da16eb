package importer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/viniciusmt/conciliaspc/internal/domain"
)

// repoMemoria guarda o último lote salvo, para inspecionar o que o importador
// persistiu.
type repoMemoria struct {
	salvo      *domain.ArquivoImportacao
	erroSalvar error
}

func (r *repoMemoria) SalvarArquivo(_ context.Context, arquivo *domain.ArquivoImportacao) error {
	if r.erroSalvar != nil {
		return r.erroSalvar
	}
	r.salvo = arquivo
	return nil
}

func (r *repoMemoria) BuscarArquivoPorID(context.Context, string) (*domain.ArquivoImportacao, error) {
	return r.salvo, nil
}
func (r *repoMemoria) ContarAssociadosAtivos(context.Context) (int64, error) { return 0, nil }
func (r *repoMemoria) ContarProdutosAtivos(context.Context) (int64, error)  { return 0, nil }
func (r *repoMemoria) ListarDocumentosAssociadosAtivos(context.Context) ([]string, error) {
	return nil, nil
}
func (r *repoMemoria) ListarCodigosProdutosAtivos(context.Context) ([]string, error) {
	return nil, nil
}
func (r *repoMemoria) AgregarNotas(context.Context, string) (int64, domain.Valor, error) {
	return 0, 0, nil
}
func (r *repoMemoria) SomarValorItens(context.Context, string) (domain.Valor, error) {
	return 0, nil
}

func novoServicoTeste(repo *repoMemoria) Service {
	return NewService(repo, zap.NewNop().Sugar())
}

func linhaNota(numeroNota, documento, tipoPessoa, valor string) string {
	return montarLinha('3', 575, map[int]string{
		1:   "20240125",
		19:  numeroNota,
		29:  valor,
		50:  "DEVEDOR TESTE",
		263: tipoPessoa,
		264: documento,
	})
}

func linhaItem(quantidade, unitario, total, produto string) string {
	return montarLinha('4', 140, map[int]string{
		1:   quantidade,
		8:   "SERVICO TESTE",
		58:  unitario,
		65:  total,
		76:  "D",
		124: produto,
	})
}

func TestImportarArquivo(t *testing.T) {
	ctx := context.Background()

	t.Run("Arquivo completo monta o agregado na ordem", func(t *testing.T) {
		conteudo := strings.Join([]string{
			montarLinha('0', 575, map[int]string{1: "20240115", 9: "SPC_JAN.TXT"}),
			montarLinha('1', 575, map[int]string{1: "20240110"}),
			linhaNota("0000000001", "12345678000190", "J", "0000000010000"),
			linhaItem("0000001", "0010000", "00000010000", "0101"),
			linhaNota("0000000002", "98765432100", "F", "0000000020000"),
			linhaItem("0000002", "0010000", "00000020000", "0202"),
			montarLinha('9', 575, map[int]string{1: "000006", 7: "000002", 13: "0000000030000"}),
		}, "\n")

		repo := &repoMemoria{}
		lote, err := novoServicoTeste(repo).ImportarArquivo(ctx, strings.NewReader(conteudo), "SPC_JAN.TXT")
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}

		if lote.Status != domain.StatusProcessado {
			t.Errorf("esperava status PROCESSADO, obteve %s", lote.Status)
		}
		if len(lote.Headers) != 1 || len(lote.Parametros) != 1 || len(lote.Trailers) != 1 {
			t.Errorf("contagens de registros erradas: %d headers, %d parametros, %d trailers",
				len(lote.Headers), len(lote.Parametros), len(lote.Trailers))
		}
		if len(lote.NotasDebito) != 2 {
			t.Fatalf("esperava 2 notas, obteve %d", len(lote.NotasDebito))
		}
		if len(lote.NotasDebito[0].Itens) != 1 || len(lote.NotasDebito[1].Itens) != 1 {
			t.Errorf("itens anexados às notas erradas: %d e %d",
				len(lote.NotasDebito[0].Itens), len(lote.NotasDebito[1].Itens))
		}
		if lote.NotasDebito[1].Itens[0].CodigoProduto != "0202" {
			t.Errorf("item anexado à nota errada: produto %q", lote.NotasDebito[1].Itens[0].CodigoProduto)
		}
		if repo.salvo == nil {
			t.Fatal("o lote deveria ter sido persistido")
		}
		if repo.salvo.ID == "" {
			t.Error("o lote persistido deveria ter id")
		}
	})

	t.Run("Item antes de qualquer nota é descartado sem erro", func(t *testing.T) {
		conteudo := strings.Join([]string{
			linhaItem("0000001", "0010000", "00000010000", "0101"),
			linhaNota("0000000001", "12345678000190", "J", "0000000010000"),
			linhaItem("0000001", "0020000", "00000020000", "0202"),
		}, "\n")

		lote, err := novoServicoTeste(&repoMemoria{}).ImportarArquivo(ctx, strings.NewReader(conteudo), "orfao.txt")
		if err != nil {
			t.Fatalf("item órfão não deveria falhar o lote: %v", err)
		}
		if len(lote.NotasDebito) != 1 {
			t.Fatalf("esperava 1 nota, obteve %d", len(lote.NotasDebito))
		}
		if len(lote.NotasDebito[0].Itens) != 1 {
			t.Fatalf("esperava 1 item na nota, obteve %d", len(lote.NotasDebito[0].Itens))
		}
		if lote.NotasDebito[0].Itens[0].CodigoProduto != "0202" {
			t.Errorf("o item órfão não deveria aparecer; obteve produto %q",
				lote.NotasDebito[0].Itens[0].CodigoProduto)
		}
	})

	t.Run("Tag desconhecida e linha malformada são puladas", func(t *testing.T) {
		conteudo := strings.Join([]string{
			"7LINHA COM TAG DESCONHECIDA",
			"3curta demais para nota",
			linhaNota("0000000001", "12345678000190", "J", "0000000010000"),
		}, "\n")

		lote, err := novoServicoTeste(&repoMemoria{}).ImportarArquivo(ctx, strings.NewReader(conteudo), "sujo.txt")
		if err != nil {
			t.Fatalf("conteúdo ruim não deveria falhar o lote: %v", err)
		}
		if lote.Status != domain.StatusProcessado {
			t.Errorf("esperava status PROCESSADO, obteve %s", lote.Status)
		}
		if len(lote.NotasDebito) != 1 {
			t.Errorf("esperava 1 nota válida, obteve %d", len(lote.NotasDebito))
		}
	})

	t.Run("Falha de leitura marca ERRO e persiste o parcial", func(t *testing.T) {
		erroLeitura := errors.New("conexão interrompida")
		leitor := io.MultiReader(
			strings.NewReader(linhaNota("0000000001", "12345678000190", "J", "0000000010000")+"\n"),
			&leitorComErro{erro: erroLeitura},
		)

		repo := &repoMemoria{}
		lote, err := novoServicoTeste(repo).ImportarArquivo(ctx, leitor, "truncado.txt")
		if err == nil {
			t.Fatal("esperava erro fatal de leitura")
		}
		if lote.Status != domain.StatusErro {
			t.Errorf("esperava status ERRO, obteve %s", lote.Status)
		}
		if repo.salvo == nil {
			t.Error("o lote parcial deveria ter sido persistido mesmo com erro")
		}
		if len(lote.NotasDebito) != 1 {
			t.Errorf("o parcial deveria conter a nota lida antes da falha, obteve %d", len(lote.NotasDebito))
		}
	})

	t.Run("Arquivo vazio vira lote vazio processado", func(t *testing.T) {
		lote, err := novoServicoTeste(&repoMemoria{}).ImportarArquivo(ctx, strings.NewReader(""), "vazio.txt")
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}
		if lote.Status != domain.StatusProcessado {
			t.Errorf("esperava status PROCESSADO, obteve %s", lote.Status)
		}
		if len(lote.NotasDebito) != 0 {
			t.Errorf("esperava lote sem notas, obteve %d", len(lote.NotasDebito))
		}
	})
}

type leitorComErro struct {
	erro error
}

func (l *leitorComErro) Read([]byte) (int, error) {
	return 0, l.erro
}
