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
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/af360bank/financeiro/model"
)

// cnpjPatterns is tried in order and the first match wins. Labeled tokens
// beat bare ones so a stray account number never shadows an explicit CNPJ.
var cnpjPatterns = []*regexp.Regexp{
	regexp.MustCompile(`CNPJ[:\s]*(\d{14,15})`),
	regexp.MustCompile(`CNPJ[:\s]*(\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2})`),
	regexp.MustCompile(`\b(\d{14,15})\b`),
	regexp.MustCompile(`\b(\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2})\b`),
}

var nonDigits = regexp.MustCompile(`\D`)

// enrichableCategories are the counterparty-bearing tags. Only these carry a
// CNPJ worth resolving against the registry.
var enrichableCategories = map[string]bool{
	CategoryPixReceived: true,
	CategoryTedReceived: true,
	CategoryPayment:     true,
}

// NormalizeCNPJ reduces a captured token to the canonical 14-digit form.
// A 15-digit token with a leading zero is a common export artifact and is
// trimmed; any other length is rejected.
//
// Parameters:
// - token string: The raw captured token, possibly punctuated.
//
// Returns:
// - string: The 14-digit CNPJ.
// - bool: Whether the token normalized to a valid length.
func NormalizeCNPJ(token string) (string, bool) {
	digits := nonDigits.ReplaceAllString(token, "")
	if len(digits) == 15 && strings.HasPrefix(digits, "0") {
		digits = digits[1:]
	}
	if len(digits) != 14 {
		return "", false
	}
	return digits, true
}

// findCNPJSpan locates the first CNPJ-like token in a description.
//
// Returns:
// - start, end int: The span of the full match, for positional replacement.
// - token string: The captured token.
// - bool: Whether any pattern matched.
func findCNPJSpan(description string) (int, int, string, bool) {
	for _, pattern := range cnpjPatterns {
		loc := pattern.FindStringSubmatchIndex(description)
		if loc == nil {
			continue
		}
		return loc[0], loc[1], description[loc[2]:loc[3]], true
	}
	return 0, 0, "", false
}

// rewriteSpan replaces the matched span with the resolved company name. The
// replacement is positional: a token recurring elsewhere in the description
// is left alone.
func rewriteSpan(description string, start, end int, record *model.CompanyRecord, cnpj string) string {
	replacement := fmt.Sprintf("%s (CNPJ: %s)", record.LegalName, cnpj)
	return description[:start] + replacement + description[end:]
}

// EnrichDescription resolves an embedded CNPJ in a counterparty-bearing
// description against the company registry. It returns the possibly rewritten
// description and the normalized document, which is recorded even when the
// lookup misses so a later retry pass can find the row again.
//
// Parameters:
// - ctx context.Context: The context for the registry lookup.
// - description string: The raw statement description.
// - category string: The category tag from Classify.
//
// Returns:
// - string: The description, rewritten on a registry hit.
// - string: The normalized 14-digit document, empty when none was found.
func (f *Financeiro) EnrichDescription(ctx context.Context, description, category string) (string, string) {
	if !enrichableCategories[category] {
		return description, ""
	}

	start, end, token, found := findCNPJSpan(description)
	if !found {
		return description, ""
	}

	cnpj, ok := NormalizeCNPJ(token)
	if !ok {
		return description, ""
	}

	record, err := f.companies.Lookup(ctx, cnpj)
	if err != nil || record == nil || record.LegalName == "" {
		return description, cnpj
	}

	return rewriteSpan(description, start, end, record, cnpj), cnpj
}

// ReEnrich rewrites a previously persisted description once its document
// resolves. Descriptions already carrying the resolved form are returned
// unchanged.
func ReEnrich(description string, record *model.CompanyRecord, cnpj string) (string, bool) {
	if strings.Contains(description, fmt.Sprintf("(CNPJ: %s)", cnpj)) {
		return description, false
	}
	start, end, token, found := findCNPJSpan(description)
	if !found {
		return description, false
	}
	normalized, ok := NormalizeCNPJ(token)
	if !ok || normalized != cnpj {
		return description, false
	}
	return rewriteSpan(description, start, end, record, cnpj), true
}
