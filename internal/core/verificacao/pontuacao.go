// internal/core/verificacao/pontuacao.go
package verificacao

import "github.com/viniciusmt/conciliaspc/internal/domain"

// Pesos de penalidade por categoria divergente e limiares dos níveis de
// confiança. São constantes calibradas na operação; não há derivação formal,
// então ficam centralizadas aqui para ajuste.
const (
	penalidadePadrao       = 10.0
	penalidadeConsistencia = 15.0
	penalidadeEstrutura    = 20.0
)

const (
	NivelMuitoAlto  = "VERY HIGH"
	NivelAlto       = "HIGH"
	NivelMedio      = "MEDIUM"
	NivelBaixo      = "LOW"
	NivelMuitoBaixo = "VERY LOW"
)

func penalidadeDaCategoria(categoria string) float64 {
	switch categoria {
	case CategoriaConsistencia:
		return penalidadeConsistencia
	case CategoriaEstrutura:
		return penalidadeEstrutura
	default:
		return penalidadePadrao
	}
}

// calcularPontuacao deriva a pontuação de confiança (0–100) e o nível a
// partir dos resultados: base proporcional às categorias sem divergência,
// menos a penalidade acumulada das divergentes.
func calcularPontuacao(resultados []domain.ResultadoVerificacao) (float64, string) {
	total := len(resultados)
	if total == 0 {
		return 0, NivelMuitoBaixo
	}

	naoDivergentes := 0
	penalidade := 0.0
	for _, r := range resultados {
		if r.Divergente {
			penalidade += penalidadeDaCategoria(r.Categoria)
		} else {
			naoDivergentes++
		}
	}

	pontuacao := float64(naoDivergentes)/float64(total)*100 - penalidade
	if pontuacao < 0 {
		pontuacao = 0
	}
	return pontuacao, nivelDaPontuacao(pontuacao)
}

func nivelDaPontuacao(pontuacao float64) string {
	switch {
	case pontuacao >= 90:
		return NivelMuitoAlto
	case pontuacao >= 75:
		return NivelAlto
	case pontuacao >= 60:
		return NivelMedio
	case pontuacao >= 40:
		return NivelBaixo
	default:
		return NivelMuitoBaixo
	}
}
