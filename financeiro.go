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
	"embed"
	"time"

	"github.com/af360bank/financeiro/cache"
	"github.com/af360bank/financeiro/config"
	"github.com/af360bank/financeiro/database"
	"github.com/af360bank/financeiro/internal/apierror"
	"github.com/af360bank/financeiro/model"
)

// Financeiro is the statement-ingestion service. It owns the datasource, the
// company registry client and the per-job progress state; the HTTP layer and
// CLI are thin shells around it.
type Financeiro struct {
	datasource database.IDataSource
	companies  *CompanyService
	progress   *ProgressTracker
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// NewFinanceiro initializes the service with the provided datasource. It
// fetches the configuration and wires the redis-backed company cache and the
// progress tracker.
//
// Parameters:
// - db database.IDataSource: The datasource for persistence.
//
// Returns:
// - *Financeiro: A pointer to the newly created service.
// - error: An error if any of the initialization steps fail.
func NewFinanceiro(db database.IDataSource) (*Financeiro, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	newCache, err := cache.NewCache()
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(configuration.Ingestion.ProgressTtlSecond) * time.Second
	return &Financeiro{
		datasource: db,
		companies:  NewCompanyService(newCache),
		progress:   NewProgressTracker(ttl),
	}, nil
}

// GetImportJob returns the progress state for an import job.
func (f *Financeiro) GetImportJob(importID string) (model.ImportJob, bool) {
	return f.progress.Get(importID)
}

// GetTransactions reads persisted transactions for reporting.
func (f *Financeiro) GetTransactions(ctx context.Context, filter model.TransactionFilter, limit, offset int) ([]model.Transaction, error) {
	return f.datasource.GetTransactions(ctx, filter, limit, offset)
}

// GetCategorySummaries aggregates persisted transactions per category.
func (f *Financeiro) GetCategorySummaries(ctx context.Context) ([]model.CategorySummary, error) {
	return f.datasource.GetCategorySummaries(ctx)
}

// VerifyCompany resolves a CNPJ against the registry, going through the same
// caches the enricher uses.
func (f *Financeiro) VerifyCompany(ctx context.Context, rawCNPJ string) (*model.CompanyRecord, error) {
	cnpj, ok := NormalizeCNPJ(rawCNPJ)
	if !ok {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "CNPJ must have 14 digits", nil)
	}
	record, err := f.companies.Lookup(ctx, cnpj)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "company not found in registry", err)
	}
	return record, nil
}
