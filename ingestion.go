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
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/af360bank/financeiro/config"
	"github.com/af360bank/financeiro/internal/apierror"
	"github.com/af360bank/financeiro/internal/notification"
	"github.com/af360bank/financeiro/model"
)

// allowedStatementFile gates uploads on extension before any job state is
// created. Legacy .xls exports are accepted here and fail at parse time.
func allowedStatementFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".xls" || ext == ".xlsx"
}

// IngestStatement stages an uploaded statement file and starts one background
// job for it. It returns immediately with the import id; callers poll
// GetImportJob until the job is terminal.
//
// Parameters:
// - ctx context.Context: The request context; the job itself runs detached.
// - reader io.Reader: The uploaded file contents.
// - filename string: The caller-chosen filename, used for the extension gate.
//
// Returns:
// - string: The import id.
// - error: A synchronous rejection (bad extension, staging failure).
func (f *Financeiro) IngestStatement(ctx context.Context, reader io.Reader, filename string) (string, error) {
	if !allowedStatementFile(filename) {
		return "", apierror.NewAPIError(apierror.ErrInvalidInput,
			fmt.Sprintf("unsupported file extension %q, expected .xls or .xlsx", filepath.Ext(filename)), nil)
	}

	tempFile, err := f.createAndPopulateTempFile(filename, reader)
	if err != nil {
		return "", apierror.NewAPIError(apierror.ErrInternalServer, "failed to stage uploaded file", err)
	}

	importID := model.GenerateUUIDWithSuffix("import")
	f.progress.Create(importID)

	// The job outlives the HTTP request; keep the span but drop the
	// request-scoped cancellation.
	bgCtx := trace.ContextWithSpan(context.Background(), trace.SpanFromContext(ctx))
	go f.processStatement(bgCtx, importID, tempFile)

	return importID, nil
}

// processStatement runs one import job to a terminal state. Row-level
// problems are logged and skipped; only an unreadable file, unresolved
// columns or a storage failure fail the whole job. The staged file is
// removed in every outcome.
func (f *Financeiro) processStatement(ctx context.Context, importID string, tempFile *os.File) {
	ctx, span := otel.Tracer("statement.ingestion").Start(ctx, "Processing statement file")
	defer span.End()
	defer f.cleanupTempFile(tempFile)

	rows, err := readSheet(tempFile.Name())
	if err != nil {
		logrus.Errorf("import %s: %v", importID, err)
		f.progress.Fail(importID, fmt.Sprintf("unreadable statement file: %v", err))
		return
	}

	roles, dataStart, err := resolveStatementColumns(rows)
	if err != nil {
		logrus.Errorf("import %s: %v", importID, err)
		f.progress.Fail(importID, err.Error())
		return
	}

	dataRows := rows[dataStart:]
	f.progress.StartProcessing(importID, len(dataRows))

	accepted := make([]*model.Transaction, 0, len(dataRows))
	for i, row := range dataRows {
		// counted before the attempt so progress stays monotonic even
		// when the row is skipped
		f.progress.IncrementProcessed(importID)

		statementRow, err := normalizeRow(row, roles)
		if err != nil {
			logrus.Warnf("import %s: skipping row %d: %v", importID, dataStart+i+1, err)
			continue
		}

		category := Classify(statementRow.Description, statementRow.Value)
		description, document := f.EnrichDescription(ctx, statementRow.Description, category)

		accepted = append(accepted, &model.Transaction{
			TransactionID: model.GenerateUUIDWithSuffix("txn"),
			Date:          statementRow.Date,
			Description:   description,
			Value:         statementRow.Value,
			Direction:     model.DirectionFor(statementRow.Value),
			Category:      category,
			Document:      document,
			ImportID:      importID,
			CreatedAt:     time.Now(),
		})
	}

	if err := f.datasource.RecordStatementTransactions(ctx, accepted); err != nil {
		notification.NotifyError(err)
		f.progress.Fail(importID, fmt.Sprintf("failed to persist transactions: %v", err))
		return
	}

	f.progress.Complete(importID, fmt.Sprintf("imported %d of %d rows", len(accepted), len(dataRows)))
}

// createAndPopulateTempFile stages the uploaded data in the configured
// upload directory and rewinds the file for reading.
func (f *Financeiro) createAndPopulateTempFile(filename string, reader io.Reader) (*os.File, error) {
	tempFile, err := f.createTempFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error creating temporary file: %w", err)
	}

	if _, err := io.Copy(tempFile, reader); err != nil {
		return nil, fmt.Errorf("error copying upload data: %w", err)
	}

	if _, err := tempFile.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("error seeking temporary file: %w", err)
	}

	return tempFile, nil
}

func (f *Financeiro) createTempFile(originalFilename string) (*os.File, error) {
	conf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	tempDir := filepath.Join(os.TempDir(), conf.Ingestion.UploadDir)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating upload directory: %w", err)
	}

	prefix := fmt.Sprintf("%s_", filepath.Base(originalFilename))
	tempFile, err := os.CreateTemp(tempDir, prefix)
	if err != nil {
		return nil, fmt.Errorf("error creating temporary file: %w", err)
	}

	return tempFile, nil
}

// cleanupTempFile removes the staged upload from the filesystem.
func (f *Financeiro) cleanupTempFile(file *os.File) {
	if file != nil {
		filename := file.Name()
		file.Close()
		if err := os.Remove(filename); err != nil {
			log.Printf("Error removing temporary file %s: %v", filename, err)
		}
	}
}
