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
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/af360bank/financeiro/cache"
	"github.com/af360bank/financeiro/config"
	"github.com/af360bank/financeiro/internal/request"
	"github.com/af360bank/financeiro/model"
)

// CompanyService resolves CNPJs against the external company registry. The
// in-memory map is the first level and never expires within a process; the
// redis cache behind it survives restarts. Failed lookups go into a failure
// set so a retry pass can tell "failed before" from "never attempted".
type CompanyService struct {
	mu       sync.Mutex
	records  map[string]*model.CompanyRecord
	failures map[string]struct{}
	cache    cache.Cache
}

// NewCompanyService creates a company service backed by the given cache.
// A nil cache disables the second level, which is how tests run.
func NewCompanyService(c cache.Cache) *CompanyService {
	return &CompanyService{
		records:  make(map[string]*model.CompanyRecord),
		failures: make(map[string]struct{}),
		cache:    c,
	}
}

func companyCacheKey(cnpj string) string {
	return fmt.Sprintf("company:%s", cnpj)
}

// Lookup resolves a normalized 14-digit CNPJ to a company record. Memory and
// redis are checked before the network. Failures are recorded in the failure
// set and the id stays there until a retry succeeds.
//
// Parameters:
// - ctx context.Context: The context for the registry call.
// - cnpj string: The normalized 14-digit CNPJ.
//
// Returns:
// - *model.CompanyRecord: The resolved record, nil on failure.
// - error: The lookup failure, nil on a hit.
func (s *CompanyService) Lookup(ctx context.Context, cnpj string) (*model.CompanyRecord, error) {
	s.mu.Lock()
	if record, ok := s.records[cnpj]; ok {
		s.mu.Unlock()
		return record, nil
	}
	s.mu.Unlock()

	conf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached model.CompanyRecord
		if err := s.cache.Get(ctx, companyCacheKey(cnpj), &cached); err == nil && cached.CNPJ != "" {
			s.store(cnpj, &cached)
			return &cached, nil
		}
	}

	var record model.CompanyRecord
	url := fmt.Sprintf("%s/cnpj/v1/%s", conf.Registry.Url, cnpj)
	timeout := time.Duration(conf.Registry.TimeoutSec) * time.Second
	resp, err := request.GetJSON(ctx, url, timeout, &record)
	if err != nil {
		s.recordFailure(cnpj)
		return nil, fmt.Errorf("registry lookup for %s failed: %w", cnpj, err)
	}
	if resp.StatusCode != http.StatusOK || record.LegalName == "" {
		s.recordFailure(cnpj)
		return nil, fmt.Errorf("registry lookup for %s returned status %d", cnpj, resp.StatusCode)
	}

	record.CNPJ = cnpj
	s.store(cnpj, &record)

	if s.cache != nil {
		ttl := time.Duration(conf.Registry.CacheTtlMinute) * time.Minute
		if err := s.cache.Set(ctx, companyCacheKey(cnpj), &record, ttl); err != nil {
			logrus.Warnf("failed to cache company %s: %v", cnpj, err)
		}
	}

	return &record, nil
}

// store saves a resolved record and clears the id from the failure set.
func (s *CompanyService) store(cnpj string, record *model.CompanyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[cnpj] = record
	delete(s.failures, cnpj)
}

func (s *CompanyService) recordFailure(cnpj string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[cnpj] = struct{}{}
}

// FailedLookups returns a sorted snapshot of the failure set.
func (s *CompanyService) FailedLookups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.failures))
	for id := range s.failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RetryFailedLookups re-attempts every id in the failure set with a constant
// delay between attempts so the registry is not hammered. Recovered ids have
// their persisted descriptions rewritten.
//
// Returns:
// - int: How many ids were retried.
// - int: How many of them resolved this pass.
// - error: A configuration error; individual lookup failures stay in the set.
func (f *Financeiro) RetryFailedLookups(ctx context.Context) (int, int, error) {
	conf, err := config.Fetch()
	if err != nil {
		return 0, 0, err
	}

	ids := f.companies.FailedLookups()
	if len(ids) == 0 {
		return 0, 0, nil
	}

	pacer := backoff.NewConstantBackOff(time.Duration(conf.Registry.RetryDelayMs) * time.Millisecond)
	recovered := 0
	for i, cnpj := range ids {
		if i > 0 {
			time.Sleep(pacer.NextBackOff())
		}
		record, err := f.companies.Lookup(ctx, cnpj)
		if err != nil || record == nil {
			continue
		}
		recovered++
		if err := f.reEnrichDocument(ctx, cnpj, record); err != nil {
			logrus.Errorf("failed to rewrite descriptions for %s: %v", cnpj, err)
		}
	}
	return len(ids), recovered, nil
}

// reEnrichDocument rewrites persisted descriptions for rows that carried a
// document whose lookup previously failed.
func (f *Financeiro) reEnrichDocument(ctx context.Context, cnpj string, record *model.CompanyRecord) error {
	txns, err := f.datasource.GetTransactionsByDocument(ctx, cnpj)
	if err != nil {
		return err
	}
	for _, txn := range txns {
		rewritten, changed := ReEnrich(txn.Description, record, cnpj)
		if !changed {
			continue
		}
		if err := f.datasource.UpdateTransactionDescription(ctx, txn.TransactionID, rewritten); err != nil {
			return err
		}
	}
	return nil
}
