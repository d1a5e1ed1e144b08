/*
Copyright 2025 AF360 Bank Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package financeiro

import (
	"strings"
)

// Category tags for statement rows. CategoryCredit and CategoryDebit are the
// fallback tags when no keyword rule matches.
const (
	CategoryPixReceived   = "PIX RECEBIDO"
	CategoryPixSent       = "PIX ENVIADO"
	CategoryTedReceived   = "TED RECEBIDA"
	CategoryTedSent       = "TED ENVIADA"
	CategoryPayment       = "PAGAMENTO"
	CategoryFee           = "TARIFA"
	CategoryIOF           = "IOF"
	CategoryRedemption    = "RESGATE"
	CategoryInvestment    = "APLICACAO"
	CategoryPurchase      = "COMPRA"
	CategoryCompensation  = "COMPENSACAO"
	CategoryCheck         = "CHEQUE"
	CategoryTransfer      = "TRANSFERENCIA"
	CategoryInterest      = "JUROS"
	CategoryPenalty       = "MULTA"
	CategoryCredit        = "CREDITO"
	CategoryDebit         = "DEBITO"
)

// categoryRule pairs a category tag with its keyword variants.
type categoryRule struct {
	Category string
	Keywords []string
}

// categoryRules is scanned top to bottom and the first keyword hit wins.
// The order is a compatibility contract with previously imported statements
// and must not be reordered.
var categoryRules = []categoryRule{
	{CategoryPixReceived, []string{"PIX RECEBIDO"}},
	{CategoryPixSent, []string{"PIX ENVIADO"}},
	{CategoryTedReceived, []string{"TED RECEBIDA", "TED CREDIT"}},
	{CategoryTedSent, []string{"TED ENVIADA", "TED DEBIT"}},
	{CategoryPayment, []string{"PAGAMENTO", "PGTO", "PAG"}},
	{CategoryFee, []string{"TARIFA", "TAR"}},
	{CategoryIOF, []string{"IOF"}},
	{CategoryRedemption, []string{"RESGATE"}},
	{CategoryInvestment, []string{"APLICACAO", "APLICAÇÃO"}},
	{CategoryPurchase, []string{"COMPRA"}},
	{CategoryCompensation, []string{"COMPENSACAO", "COMPENSAÇÃO"}},
	{CategoryCheck, []string{"CHEQUE"}},
	{CategoryTransfer, []string{"TRANSFERENCIA", "TRANSF"}},
	{CategoryInterest, []string{"JUROS"}},
	{CategoryPenalty, []string{"MULTA"}},
}

// Classify maps a statement description and signed value to a category tag.
// It is total: every input resolves to a tag, falling back to the generic
// credit/debit tags derived from the sign of value.
//
// Parameters:
// - description string: The raw statement description.
// - value float64: The signed transaction value.
//
// Returns:
// - string: The category tag.
func Classify(description string, value float64) string {
	text := strings.ToUpper(description)

	for _, rule := range categoryRules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(text, keyword) {
				return rule.Category
			}
		}
	}

	// A generic PIX or TED token without a direction word resolves by sign.
	if strings.Contains(text, "PIX") {
		if value > 0 {
			return CategoryPixReceived
		}
		return CategoryPixSent
	}
	if strings.Contains(text, "TED") {
		if value > 0 {
			return CategoryTedReceived
		}
		return CategoryTedSent
	}

	if value > 0 {
		return CategoryCredit
	}
	return CategoryDebit
}
