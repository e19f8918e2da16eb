// internal/core/importer/registros.go
package importer

import (
	"fmt"

	"github.com/viniciusmt/conciliaspc/internal/domain"
)

// Tamanhos mínimos de linha por tipo de registro, conforme o layout SPC.
const (
	tamanhoMinimoHeader     = 575
	tamanhoMinimoParametros = 575
	tamanhoMinimoNota       = 575
	tamanhoMinimoItem       = 140
	tamanhoMinimoTrailer    = 575
)

// Tags de tipo de registro (primeiro caractere da linha).
const (
	tagHeader     = '0'
	tagParametros = '1'
	tagNota       = '3'
	tagItem       = '4'
	tagTrailer    = '9'
)

func validarTamanho(linha string, minimo int) error {
	if len([]rune(linha)) < minimo {
		return fmt.Errorf("%w: linha com %d caracteres, mínimo %d", ErrRegistroMalformado, len([]rune(linha)), minimo)
	}
	return nil
}

func parseHeader(linha string) (domain.RegistroHeader, error) {
	var h domain.RegistroHeader
	if err := validarTamanho(linha, tamanhoMinimoHeader); err != nil {
		return h, err
	}
	h.DataGravacao, _ = campo(linha, 1, 9)
	h.NomeArquivo, _ = campo(linha, 9, 39)
	h.DataRefFatura, _ = campo(linha, 59, 67)
	h.NomeEntidade, _ = campo(linha, 75, 125)
	h.CnpjEntidade, _ = campo(linha, 276, 295)
	return h, nil
}

func parseParametros(linha string) (domain.RegistroParametros, error) {
	var p domain.RegistroParametros
	if err := validarTamanho(linha, tamanhoMinimoParametros); err != nil {
		return p, err
	}
	p.DataReferencia, _ = campo(linha, 1, 9)

	valor, _, err := campoValor(linha, 9, 22)
	if err != nil {
		return p, err
	}
	p.ValorVencimento1 = valor

	p.DataVencimento1, _ = campo(linha, 22, 30)

	multa, _, err := campoValor(linha, 41, 46)
	if err != nil {
		return p, err
	}
	p.PercentualMulta = multa

	minimo, _, err := campoValor(linha, 137, 150)
	if err != nil {
		return p, err
	}
	p.ValorMinimoFatura = minimo
	return p, nil
}

func parseNotaDebito(linha string) (domain.NotaDebito, error) {
	var n domain.NotaDebito
	if err := validarTamanho(linha, tamanhoMinimoNota); err != nil {
		return n, err
	}
	n.DataVencimento, _ = campo(linha, 1, 9)
	n.NumeroFatura, _ = campo(linha, 9, 19)
	n.NumeroNota, _ = campo(linha, 19, 29)

	valor, _, err := campoValor(linha, 29, 42)
	if err != nil {
		return n, err
	}
	n.ValorNota = valor

	n.CodigoDevedor, _ = campo(linha, 42, 50)
	n.NomeDevedor, _ = campo(linha, 50, 100)
	n.TipoPessoa, _ = campo(linha, 263, 264)

	documento, _ := campo(linha, 264, 283)
	n.Documento = truncarDocumento(documento, n.TipoPessoa)

	n.Logradouro, _ = campo(linha, 283, 353)
	n.Cidade, _ = campo(linha, 353, 383)
	n.UF, _ = campo(linha, 383, 385)
	n.CEP, _ = campo(linha, 385, 393)

	n.Itens = []domain.ItemNota{}
	return n, nil
}

// truncarDocumento mantém apenas os N últimos caracteres do campo de documento
// já sem espaços: 11 para CPF (pessoa 'F'), 14 para CNPJ. Zeros à esquerda
// dentro desses N caracteres são preservados.
func truncarDocumento(documento, tipoPessoa string) string {
	tamanho := 14
	if tipoPessoa == "F" {
		tamanho = 11
	}
	runas := []rune(documento)
	if len(runas) <= tamanho {
		return documento
	}
	return string(runas[len(runas)-tamanho:])
}

func parseItemNota(linha string) (domain.ItemNota, error) {
	var i domain.ItemNota
	if err := validarTamanho(linha, tamanhoMinimoItem); err != nil {
		return i, err
	}

	quantidade, ok, err := campoInteiro(linha, 1, 8)
	if err != nil {
		return i, err
	}
	if !ok {
		quantidade = 1
	}
	i.Quantidade = quantidade

	i.Descricao, _ = campo(linha, 8, 58)

	unitario, _, err := campoValor(linha, 58, 65)
	if err != nil {
		return i, err
	}
	i.ValorUnitario = unitario

	total, temTotal, err := campoValor(linha, 65, 76)
	if err != nil {
		return i, err
	}
	if !temTotal {
		total = domain.Valor(int64(i.Quantidade)) * i.ValorUnitario
	}
	i.ValorTotal = total

	i.TipoLancamento, _ = campo(linha, 76, 77)
	i.CodigoProduto, _ = campo(linha, 124, 128)
	return i, nil
}

func parseTrailer(linha string) (domain.RegistroTrailer, error) {
	var t domain.RegistroTrailer
	if err := validarTamanho(linha, tamanhoMinimoTrailer); err != nil {
		return t, err
	}

	registros, _, err := campoInteiro(linha, 1, 7)
	if err != nil {
		return t, err
	}
	t.TotalRegistros = registros

	boletos, _, err := campoInteiro(linha, 7, 13)
	if err != nil {
		return t, err
	}
	t.TotalBoletos = boletos

	valor, _, err := campoValor(linha, 13, 26)
	if err != nil {
		return t, err
	}
	t.ValorTotal = valor
	return t, nil
}
