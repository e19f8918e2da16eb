package verificacao

import (
	"context"
	"reflect"
	"testing"
)

func TestDiferencaChaves(t *testing.T) {
	t.Run("Diferença nos dois sentidos, ordenada", func(t *testing.T) {
		doArquivo := map[string]struct{}{
			"222": {},
			"111": {},
			"333": {},
		}
		daBase := []string{"333", "444", "555"}

		novas, ausentes := diferencaChaves(doArquivo, daBase)
		if !reflect.DeepEqual(novas, []string{"111", "222"}) {
			t.Errorf("novas: esperava [111 222], obteve %v", novas)
		}
		if !reflect.DeepEqual(ausentes, []string{"444", "555"}) {
			t.Errorf("ausentes: esperava [444 555], obteve %v", ausentes)
		}
	})

	t.Run("Conjuntos iguais não geram divergência", func(t *testing.T) {
		doArquivo := map[string]struct{}{"111": {}}
		novas, ausentes := diferencaChaves(doArquivo, []string{"111"})
		if len(novas) != 0 || len(ausentes) != 0 {
			t.Errorf("esperava listas vazias, obteve novas=%v ausentes=%v", novas, ausentes)
		}
	})

	t.Run("Listas vazias em vez de nil", func(t *testing.T) {
		novas, ausentes := diferencaChaves(map[string]struct{}{}, nil)
		if novas == nil || ausentes == nil {
			t.Error("as listas devem sair vazias, não nil, para serializar como []")
		}
	})
}

func TestVerificarDivergencias(t *testing.T) {
	repo := repoSemDivergencia()
	repo.documentosBase = []string{"12345678000190", "11111111000111"}
	repo.produtosBase = []string{"0101", "0202", "0303"}

	divergencias, err := novoServicoTeste(repo).VerificarDivergencias(context.Background(), "lote-1")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	// O arquivo tem os documentos 12345678000190 e 98765432100 e os produtos
	// 0101 e 0202.
	if !reflect.DeepEqual(divergencias.AssociadosNovos, []string{"98765432100"}) {
		t.Errorf("associados novos: obteve %v", divergencias.AssociadosNovos)
	}
	if !reflect.DeepEqual(divergencias.AssociadosAusentes, []string{"11111111000111"}) {
		t.Errorf("associados ausentes: obteve %v", divergencias.AssociadosAusentes)
	}
	if len(divergencias.ProdutosNovos) != 0 {
		t.Errorf("produtos novos: esperava vazio, obteve %v", divergencias.ProdutosNovos)
	}
	if !reflect.DeepEqual(divergencias.ProdutosAusentes, []string{"0303"}) {
		t.Errorf("produtos ausentes: obteve %v", divergencias.ProdutosAusentes)
	}
}
