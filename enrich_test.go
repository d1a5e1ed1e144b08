package financeiro

import (
	"testing"

	"github.com/af360bank/financeiro/model"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeCNPJ(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
		ok       bool
	}{
		{"canonical 14 digits", "12345678000199", "12345678000199", true},
		{"formatted", "12.345.678/0001-99", "12345678000199", true},
		{"15 digits leading zero", "012345678000199", "12345678000199", true},
		{"15 digits no leading zero", "912345678000199", "", false},
		{"13 digits", "1234567800019", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeCNPJ(tt.token)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFindCNPJSpanPatternOrder(t *testing.T) {
	// The labeled token wins over a bare digit run appearing earlier.
	description := "DOC 99887766554433 PIX RECEBIDO CNPJ: 12345678000199"
	start, end, token, found := findCNPJSpan(description)
	assert.True(t, found)
	assert.Equal(t, "12345678000199", token)
	assert.Equal(t, "CNPJ: 12345678000199", description[start:end])
}

func TestFindCNPJSpanBareToken(t *testing.T) {
	start, end, token, found := findCNPJSpan("PIX RECEBIDO 12345678000199 CLIENTE")
	assert.True(t, found)
	assert.Equal(t, "12345678000199", token)
	assert.Equal(t, "12345678000199", "PIX RECEBIDO 12345678000199 CLIENTE"[start:end])
}

func TestFindCNPJSpanFormatted(t *testing.T) {
	_, _, token, found := findCNPJSpan("TED RECEBIDA 12.345.678/0001-99")
	assert.True(t, found)
	assert.Equal(t, "12.345.678/0001-99", token)
}

func TestFindCNPJSpanNoMatch(t *testing.T) {
	_, _, _, found := findCNPJSpan("TARIFA PACOTE SERVICOS")
	assert.False(t, found)
}

func TestRewriteSpanPositional(t *testing.T) {
	record := &model.CompanyRecord{CNPJ: "12345678000199", LegalName: "ACME LTDA"}
	description := "PIX RECEBIDO CNPJ 12345678000199 REF 12345678000199"
	start, end, _, found := findCNPJSpan(description)
	assert.True(t, found)

	got := rewriteSpan(description, start, end, record, "12345678000199")
	assert.Equal(t, "PIX RECEBIDO ACME LTDA (CNPJ: 12345678000199) REF 12345678000199", got)
}

func TestReEnrich(t *testing.T) {
	record := &model.CompanyRecord{CNPJ: "12345678000199", LegalName: "ACME LTDA"}

	got, changed := ReEnrich("PIX RECEBIDO CNPJ 12345678000199", record, "12345678000199")
	assert.True(t, changed)
	assert.Contains(t, got, "ACME LTDA (CNPJ: 12345678000199)")

	// Already enriched descriptions are left alone.
	again, changed := ReEnrich(got, record, "12345678000199")
	assert.False(t, changed)
	assert.Equal(t, got, again)

	// A different document in the description is not touched.
	same, changed := ReEnrich("PIX RECEBIDO CNPJ 99887766000155", record, "12345678000199")
	assert.False(t, changed)
	assert.Equal(t, "PIX RECEBIDO CNPJ 99887766000155", same)
}
