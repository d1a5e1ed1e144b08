package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateTransactionQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   TransactionQuery
		wantErr bool
	}{
		{"empty query", TransactionQuery{Limit: 50}, false},
		{"full query", TransactionQuery{Direction: "CREDIT", Category: "PIX RECEBIDO", Document: "12345678000199", From: "2025-01-01", To: "2025-01-31", Limit: 100}, false},
		{"bad direction", TransactionQuery{Direction: "SIDEWAYS", Limit: 50}, true},
		{"short document", TransactionQuery{Document: "1234567", Limit: 50}, true},
		{"non numeric document", TransactionQuery{Document: "1234567800019x", Limit: 50}, true},
		{"bad date", TransactionQuery{From: "31/01/2025", Limit: 50}, true},
		{"limit too high", TransactionQuery{Limit: 10000}, true},
		{"negative offset", TransactionQuery{Limit: 50, Offset: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.ValidateTransactionQuery()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToFilter(t *testing.T) {
	q := TransactionQuery{Direction: "DEBIT", Category: "TARIFA", From: "2025-01-01", To: "2025-01-31", Limit: 50}
	filter := q.ToFilter()

	assert.Equal(t, "DEBIT", filter.Direction)
	assert.Equal(t, "TARIFA", filter.Category)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), filter.From)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), filter.To)
}
