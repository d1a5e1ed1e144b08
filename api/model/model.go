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

package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/af360bank/financeiro/model"
)

// TransactionQuery carries the reporting filters from query parameters.
type TransactionQuery struct {
	Direction string `form:"direction"`
	Category  string `form:"category"`
	Document  string `form:"document"`
	From      string `form:"from"`
	To        string `form:"to"`
	Limit     int    `form:"limit,default=50"`
	Offset    int    `form:"offset,default=0"`
}

// ValidateTransactionQuery checks the filter values before they reach the
// datasource.
func (q *TransactionQuery) ValidateTransactionQuery() error {
	return validation.ValidateStruct(q,
		validation.Field(&q.Direction, validation.In(model.DirectionCredit, model.DirectionDebit)),
		validation.Field(&q.Document, validation.Length(14, 14), is14Digits(q.Document)),
		validation.Field(&q.From, validation.Date("2006-01-02")),
		validation.Field(&q.To, validation.Date("2006-01-02")),
		validation.Field(&q.Limit, validation.Min(1), validation.Max(500)),
		validation.Field(&q.Offset, validation.Min(0)),
	)
}

func is14Digits(document string) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		for _, r := range s {
			if r < '0' || r > '9' {
				return validation.NewError("validation_document", "document must contain only digits")
			}
		}
		return nil
	})
}

// ToFilter converts the validated query to a storage filter. Date parse
// errors cannot happen past validation.
func (q *TransactionQuery) ToFilter() model.TransactionFilter {
	filter := model.TransactionFilter{
		Direction: q.Direction,
		Category:  q.Category,
		Document:  q.Document,
	}
	if q.From != "" {
		filter.From, _ = time.Parse("2006-01-02", q.From)
	}
	if q.To != "" {
		filter.To, _ = time.Parse("2006-01-02", q.To)
	}
	return filter
}
