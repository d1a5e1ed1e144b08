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

package database

import (
	"context"

	"github.com/af360bank/financeiro/model"
)

// IDataSource defines the interface for data source operations.
type IDataSource interface {
	transaction
}

// transaction defines methods for handling statement transactions.
type transaction interface {
	// RecordStatementTransactions persists an import batch in one transaction.
	RecordStatementTransactions(ctx context.Context, txns []*model.Transaction) error
	// GetTransactions reads transactions for reporting.
	GetTransactions(ctx context.Context, filter model.TransactionFilter, limit, offset int) ([]model.Transaction, error)
	// GetCategorySummaries aggregates per-category counts and totals.
	GetCategorySummaries(ctx context.Context) ([]model.CategorySummary, error)
	// GetTransactionsByDocument finds rows carrying a document.
	GetTransactionsByDocument(ctx context.Context, document string) ([]model.Transaction, error)
	// UpdateTransactionDescription rewrites a description after re-enrichment.
	UpdateTransactionDescription(ctx context.Context, transactionID, description string) error
}
