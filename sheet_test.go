package financeiro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStatementColumnsBannerRow(t *testing.T) {
	rows := [][]string{
		{"Extrato Conta Corrente - Janeiro"},
		{"Data", "Histórico", "Valor"},
		{"02/01/2025", "PIX RECEBIDO", "150,00"},
	}

	roles, dataStart, err := resolveStatementColumns(rows)
	require.NoError(t, err)
	assert.Equal(t, 2, dataStart)
	assert.Equal(t, 0, roles.Date)
	assert.Equal(t, 1, roles.Description)
	assert.Equal(t, 2, roles.Amount)
}

func TestResolveStatementColumnsEnglishHeaders(t *testing.T) {
	rows := [][]string{
		{"Date", "Historic", "Value"},
		{"2025-01-02", "TED RECEBIDA", "1500.00"},
	}

	roles, dataStart, err := resolveStatementColumns(rows)
	require.NoError(t, err)
	assert.Equal(t, 1, dataStart)
	assert.Equal(t, columnRoles{Date: 0, Description: 1, Amount: 2}, roles)
}

func TestResolveStatementColumnsBlankHeaderCell(t *testing.T) {
	rows := [][]string{
		{"Data", "", "Valor", "Histórico"},
		{"02/01/2025", "x", "150,00", "PIX RECEBIDO"},
	}

	roles, _, err := resolveStatementColumns(rows)
	require.NoError(t, err)
	assert.Equal(t, 3, roles.Description)
}

func TestResolveStatementColumnsUnresolved(t *testing.T) {
	rows := [][]string{
		{"Data", "Histórico"},
		{"02/01/2025", "PIX RECEBIDO"},
	}

	_, _, err := resolveStatementColumns(rows)
	assert.ErrorIs(t, err, ErrColumnsNotFound)

	_, _, err = resolveStatementColumns(nil)
	assert.ErrorIs(t, err, ErrColumnsNotFound)
}

func TestParseStatementDate(t *testing.T) {
	tests := []struct {
		name     string
		cell     string
		expected time.Time
		wantErr  bool
	}{
		{"day month year", "02/01/2025", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), false},
		{"iso", "2025-01-02", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), false},
		{"excel serial", "45659", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), false},
		{"dashed", "02-01-2025", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), false},
		{"garbage", "not a date", time.Time{}, true},
		{"blank", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseStatementDate(tt.cell)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "expected %v got %v", tt.expected, got)
		})
	}
}

func TestParseStatementAmount(t *testing.T) {
	tests := []struct {
		name     string
		cell     string
		expected float64
		wantErr  bool
	}{
		{"both separators", "1.234,56", 1234.56, false},
		{"comma decimal", "1234,56", 1234.56, false},
		{"dot decimal", "1234.56", 1234.56, false},
		{"plain integer", "1500", 1500, false},
		{"currency symbol", "R$ 1.234,56", 1234.56, false},
		{"negative", "-150,00", -150.00, false},
		{"blank", "", 0, true},
		{"garbage", "abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseStatementAmount(tt.cell)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 0.0001)
		})
	}
}

func TestNormalizeRow(t *testing.T) {
	roles := columnRoles{Date: 0, Description: 1, Amount: 2}

	row, err := normalizeRow([]string{"02/01/2025", "PIX RECEBIDO CLIENTE", "150,00"}, roles)
	require.NoError(t, err)
	assert.Equal(t, "PIX RECEBIDO CLIENTE", row.Description)
	assert.InDelta(t, 150.00, row.Value, 0.0001)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), row.Date)

	_, err = normalizeRow([]string{"02/01/2025", "", "150,00"}, roles)
	assert.Error(t, err)

	_, err = normalizeRow([]string{"bad date", "PIX RECEBIDO", "150,00"}, roles)
	assert.Error(t, err)

	_, err = normalizeRow([]string{"02/01/2025", "PIX RECEBIDO"}, roles)
	assert.Error(t, err)
}
