package importer

import (
	"errors"
	"testing"

	"github.com/viniciusmt/conciliaspc/internal/domain"
)

func TestCampo(t *testing.T) {
	t.Run("Extrai e remove espaços das bordas", func(t *testing.T) {
		s, err := campo("0  ACISA FECHAMENTO  ", 1, 20)
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}
		if s != "ACISA FECHAMENTO" {
			t.Errorf("esperava %q, obteve %q", "ACISA FECHAMENTO", s)
		}
	})

	t.Run("Linha curta demais retorna registro malformado", func(t *testing.T) {
		_, err := campo("012345", 1, 10)
		if !errors.Is(err, ErrRegistroMalformado) {
			t.Errorf("esperava ErrRegistroMalformado, obteve %v", err)
		}
	})

	t.Run("Offsets contam caracteres, não bytes", func(t *testing.T) {
		// "Ç" ocupa dois bytes em UTF-8; o campo ainda é posicional por caractere.
		s, err := campo("0AÇÃO  ", 1, 5)
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}
		if s != "AÇÃO" {
			t.Errorf("esperava %q, obteve %q", "AÇÃO", s)
		}
	})
}

func TestCampoInteiro(t *testing.T) {
	t.Run("Dígitos com zeros à esquerda", func(t *testing.T) {
		n, ok, err := campoInteiro("x000042", 1, 7)
		if err != nil || !ok {
			t.Fatalf("esperava valor presente sem erro, obteve ok=%v err=%v", ok, err)
		}
		if n != 42 {
			t.Errorf("esperava 42, obteve %d", n)
		}
	})

	t.Run("Campo em branco significa ausência, não zero", func(t *testing.T) {
		_, ok, err := campoInteiro("x      ", 1, 7)
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}
		if ok {
			t.Error("campo em branco deveria retornar ok=false")
		}
	})

	t.Run("Conteúdo não numérico é registro malformado", func(t *testing.T) {
		_, _, err := campoInteiro("xAB12CD", 1, 7)
		if !errors.Is(err, ErrRegistroMalformado) {
			t.Errorf("esperava ErrRegistroMalformado, obteve %v", err)
		}
	})
}

func TestCampoValor(t *testing.T) {
	t.Run("Dígitos brutos são centavos", func(t *testing.T) {
		v, ok, err := campoValor("x0000000012345", 1, 14)
		if err != nil || !ok {
			t.Fatalf("esperava valor presente sem erro, obteve ok=%v err=%v", ok, err)
		}
		if v != domain.Valor(12345) {
			t.Errorf("esperava 12345 centavos, obteve %d", v)
		}
		if v.Float64() != 123.45 {
			t.Errorf("esperava 123.45, obteve %v", v.Float64())
		}
	})

	t.Run("Campo em branco significa ausência", func(t *testing.T) {
		_, ok, err := campoValor("x             ", 1, 14)
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}
		if ok {
			t.Error("campo em branco deveria retornar ok=false")
		}
	})

	t.Run("Valor com sinal", func(t *testing.T) {
		v, ok, err := campoValor("x       -12345", 1, 14)
		if err != nil || !ok {
			t.Fatalf("esperava valor presente sem erro, obteve ok=%v err=%v", ok, err)
		}
		if v != domain.Valor(-12345) {
			t.Errorf("esperava -12345 centavos, obteve %d", v)
		}
	})
}
