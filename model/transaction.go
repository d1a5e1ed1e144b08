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
	"encoding/json"
	"time"
)

// Direction values derived from the sign of a transaction value.
const (
	DirectionCredit = "CREDIT"
	DirectionDebit  = "DEBIT"
)

// Transaction is a normalized bank-statement row. Value keeps its sign;
// Direction is derived from it and never disagrees with it.
type Transaction struct {
	ID            int64     `json:"-"`
	TransactionID string    `json:"transaction_id"`
	Date          time.Time `json:"date"`
	Description   string    `json:"description"`
	Value         float64   `json:"value"`
	Direction     string    `json:"direction"`
	Category      string    `json:"category"`
	Document      string    `json:"document,omitempty"`
	ImportID      string    `json:"import_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// DirectionFor returns the credit/debit direction for a signed value.
func DirectionFor(value float64) string {
	if value > 0 {
		return DirectionCredit
	}
	return DirectionDebit
}

func (transaction *Transaction) ToJSON() ([]byte, error) {
	return json.Marshal(transaction)
}

// StatementRow is a spreadsheet row after normalization, before
// classification and enrichment.
type StatementRow struct {
	Date        time.Time
	Description string
	Value       float64
}

// TransactionFilter narrows reporting reads over persisted transactions.
type TransactionFilter struct {
	Direction string
	Category  string
	Document  string
	From      time.Time
	To        time.Time
}

// CategorySummary aggregates persisted transactions per category tag.
type CategorySummary struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
}
