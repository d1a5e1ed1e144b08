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
	"sync"
	"time"

	"github.com/af360bank/financeiro/model"
)

// ProgressTracker holds the in-process progress state for running import
// jobs. The background worker writes, polling handlers read. Terminal
// entries stay pollable for the grace window and are then reclaimed.
type ProgressTracker struct {
	mu   sync.RWMutex
	jobs map[string]*model.ImportJob
	ttl  time.Duration
}

// NewProgressTracker creates a tracker whose terminal entries are reclaimed
// ttl after completion or failure.
func NewProgressTracker(ttl time.Duration) *ProgressTracker {
	return &ProgressTracker{
		jobs: make(map[string]*model.ImportJob),
		ttl:  ttl,
	}
}

// Create registers a new pending job under importID.
func (t *ProgressTracker) Create(importID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[importID] = &model.ImportJob{
		ImportID:  importID,
		Status:    model.StatusPending,
		Message:   "queued for processing",
		StartedAt: time.Now(),
	}
}

// Get returns a copy of the job state so callers never see partial writes.
func (t *ProgressTracker) Get(importID string) (model.ImportJob, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[importID]
	if !ok {
		return model.ImportJob{}, false
	}
	return *job, true
}

// StartProcessing transitions the job to PROCESSING and records the total
// row count.
func (t *ProgressTracker) StartProcessing(importID string, rowsTotal int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if job, ok := t.jobs[importID]; ok {
		job.Status = model.StatusProcessing
		job.RowsTotal = rowsTotal
		job.Message = "processing statement rows"
	}
}

// IncrementProcessed bumps the processed counter. It is called before a row
// is attempted, so progress is monotonic even when the row is skipped.
func (t *ProgressTracker) IncrementProcessed(importID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if job, ok := t.jobs[importID]; ok {
		job.RowsProcessed++
	}
}

// Complete marks the job COMPLETED and schedules its reclaim.
func (t *ProgressTracker) Complete(importID, message string) {
	t.finish(importID, model.StatusCompleted, message)
}

// Fail marks the job FAILED and schedules its reclaim.
func (t *ProgressTracker) Fail(importID, message string) {
	t.finish(importID, model.StatusFailed, message)
}

func (t *ProgressTracker) finish(importID, status, message string) {
	t.mu.Lock()
	job, ok := t.jobs[importID]
	if ok {
		now := time.Now()
		job.Status = status
		job.Message = message
		job.CompletedAt = &now
	}
	t.mu.Unlock()

	if !ok {
		return
	}
	time.AfterFunc(t.ttl, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.jobs, importID)
	})
}
