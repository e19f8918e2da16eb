// internal/core/importer/campos.go
package importer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/viniciusmt/conciliaspc/internal/domain"
)

// ErrRegistroMalformado indica uma linha curta demais para o tipo de registro
// ou um campo numérico que não pôde ser interpretado. O montador trata esse
// erro pulando a linha; ele nunca aborta o arquivo inteiro.
var ErrRegistroMalformado = errors.New("registro malformado")

// campo extrai o trecho posicional [inicio:fim) da linha, já sem espaços nas
// bordas. Os offsets são em caracteres, pois o arquivo chega em ISO8859-1 e é
// decodificado antes do parse.
func campo(linha string, inicio, fim int) (string, error) {
	runas := []rune(linha)
	if len(runas) < fim {
		return "", fmt.Errorf("%w: linha com %d caracteres, campo exige %d", ErrRegistroMalformado, len(runas), fim)
	}
	return strings.TrimSpace(string(runas[inicio:fim])), nil
}

// campoInteiro extrai um campo de dígitos. Campo em branco significa ausência
// (ok=false), não zero: quem chama decide o valor padrão.
func campoInteiro(linha string, inicio, fim int) (int, bool, error) {
	s, err := campo(linha, inicio, fim)
	if err != nil {
		return 0, false, err
	}
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("%w: campo inteiro inválido %q", ErrRegistroMalformado, s)
	}
	return n, true, nil
}

// campoValor extrai um campo monetário com decimal implícito de duas casas.
// Os dígitos brutos já são centavos, então não há divisão nem arredondamento.
func campoValor(linha string, inicio, fim int) (domain.Valor, bool, error) {
	s, err := campo(linha, inicio, fim)
	if err != nil {
		return 0, false, err
	}
	if s == "" {
		return 0, false, nil
	}
	centavos, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: campo monetário inválido %q", ErrRegistroMalformado, s)
	}
	return domain.Valor(centavos), true, nil
}
