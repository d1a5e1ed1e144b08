package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/af360bank/financeiro/internal/apierror"
	"github.com/af360bank/financeiro/model"

	_ "github.com/lib/pq"
)

// RecordStatementTransactions persists one import batch inside a single
// database transaction. Either the whole batch lands or none of it does.
func (d Datasource) RecordStatementTransactions(ctx context.Context, txns []*model.Transaction) error {
	ctx, span := otel.Tracer("statement.ingestion").Start(ctx, "Saving import batch to db")
	defer span.End()

	if len(txns) == 0 {
		return nil
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin import transaction", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions(transaction_id,date,description,value,direction,category,document,import_id,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`)
	if err != nil {
		_ = tx.Rollback()
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to prepare insert", err)
	}
	defer stmt.Close()

	for _, txn := range txns {
		_, err = stmt.ExecContext(ctx,
			txn.TransactionID, txn.Date, txn.Description, txn.Value, txn.Direction, txn.Category, nullableString(txn.Document), txn.ImportID, txn.CreatedAt,
		)
		if err != nil {
			_ = tx.Rollback()
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record statement transaction", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit import transaction", err)
	}
	return nil
}

// GetTransactions reads persisted transactions for reporting, newest first.
// Zero-valued filter fields are ignored.
func (d Datasource) GetTransactions(ctx context.Context, filter model.TransactionFilter, limit, offset int) ([]model.Transaction, error) {
	ctx, span := otel.Tracer("statement.reporting").Start(ctx, "Getting transactions from db")
	defer span.End()

	var conditions []string
	var args []interface{}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Direction != "" {
		addCondition("direction = $%d", filter.Direction)
	}
	if filter.Category != "" {
		addCondition("category = $%d", filter.Category)
	}
	if filter.Document != "" {
		addCondition("document = $%d", filter.Document)
	}
	if !filter.From.IsZero() {
		addCondition("date >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		addCondition("date <= $%d", filter.To)
	}

	query := `SELECT id, transaction_id, date, description, value, direction, category, COALESCE(document, ''), import_id, created_at FROM transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY date DESC, id DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := d.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve transactions", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		err = rows.Scan(&txn.ID, &txn.TransactionID, &txn.Date, &txn.Description, &txn.Value, &txn.Direction, &txn.Category, &txn.Document, &txn.ImportID, &txn.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan transaction", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating transactions", err)
	}

	return transactions, nil
}

// GetCategorySummaries aggregates per-category counts and totals.
func (d Datasource) GetCategorySummaries(ctx context.Context) ([]model.CategorySummary, error) {
	ctx, span := otel.Tracer("statement.reporting").Start(ctx, "Getting category summaries from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT category, COUNT(*), COALESCE(SUM(value), 0)
		FROM transactions
		GROUP BY category
		ORDER BY category
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve category summaries", err)
	}
	defer rows.Close()

	var summaries []model.CategorySummary
	for rows.Next() {
		var summary model.CategorySummary
		err = rows.Scan(&summary.Category, &summary.Count, &summary.Total)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan category summary", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating category summaries", err)
	}

	return summaries, nil
}

// GetTransactionsByDocument finds rows carrying a document, used by the
// re-enrichment pass after a registry lookup recovers.
func (d Datasource) GetTransactionsByDocument(ctx context.Context, document string) ([]model.Transaction, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, transaction_id, date, description, value, direction, category, COALESCE(document, ''), import_id, created_at
		FROM transactions
		WHERE document = $1
	`, document)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve transactions by document", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		err = rows.Scan(&txn.ID, &txn.TransactionID, &txn.Date, &txn.Description, &txn.Value, &txn.Direction, &txn.Category, &txn.Document, &txn.ImportID, &txn.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan transaction", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating transactions", err)
	}

	return transactions, nil
}

// UpdateTransactionDescription rewrites a single description after its
// document resolved against the registry.
func (d Datasource) UpdateTransactionDescription(ctx context.Context, transactionID, description string) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE transactions SET description = $1 WHERE transaction_id = $2
	`, description, transactionID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update transaction description", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read update result", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Transaction with ID '%s' not found", transactionID), sql.ErrNoRows)
	}
	return nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
