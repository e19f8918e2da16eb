package domain

import (
	"encoding/json"
	"testing"
)

func TestValor(t *testing.T) {
	t.Run("Formata com duas casas", func(t *testing.T) {
		casos := []struct {
			valor    Valor
			esperado string
		}{
			{0, "0.00"},
			{5, "0.05"},
			{12345, "123.45"},
			{-12345, "-123.45"},
			{100, "1.00"},
		}
		for _, caso := range casos {
			if s := caso.valor.String(); s != caso.esperado {
				t.Errorf("Valor(%d): esperava %q, obteve %q", caso.valor, caso.esperado, s)
			}
		}
	})

	t.Run("JSON de ida e volta preserva centavos", func(t *testing.T) {
		original := Valor(987654321)
		data, err := json.Marshal(original)
		if err != nil {
			t.Fatalf("erro ao serializar: %v", err)
		}
		if string(data) != "9876543.21" {
			t.Errorf("esperava 9876543.21, obteve %s", data)
		}

		var lido Valor
		if err := json.Unmarshal(data, &lido); err != nil {
			t.Fatalf("erro ao desserializar: %v", err)
		}
		if lido != original {
			t.Errorf("esperava %d centavos de volta, obteve %d", original, lido)
		}
	})

	t.Run("Somas em centavos são exatas", func(t *testing.T) {
		// 0.1+0.2 clássico: em centavos não há erro de ponto flutuante.
		soma := Valor(10) + Valor(20)
		if soma != Valor(30) {
			t.Errorf("esperava 30 centavos, obteve %d", soma)
		}
	})
}
