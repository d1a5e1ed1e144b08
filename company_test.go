package financeiro

import (
	"context"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/af360bank/financeiro/config"
	"github.com/af360bank/financeiro/database"
)

func mockRegistryConfig() {
	config.MockConfig(&config.Configuration{
		Registry: config.CompanyRegistryConfig{
			Url:            "http://registry.test",
			TimeoutSec:     5,
			RetryDelayMs:   1,
			CacheTtlMinute: 60,
		},
		Ingestion: config.IngestionConfig{UploadDir: "financeiro-test-uploads", ProgressTtlSecond: 30},
	})
}

func newTestDataSource() (database.IDataSource, sqlmock.Sqlmock, error) {
	db, mock, err := sqlmock.New()
	if err != nil {
		log.Printf("an error '%s' was not expected when opening a stub database Connection", err)
	}
	return database.Datasource{Conn: db}, mock, err
}

func newTestFinanceiro(t *testing.T) (*Financeiro, sqlmock.Sqlmock) {
	t.Helper()
	mockRegistryConfig()
	datasource, mock, err := newTestDataSource()
	require.NoError(t, err)
	return &Financeiro{
		datasource: datasource,
		companies:  NewCompanyService(nil),
		progress:   NewProgressTracker(time.Hour),
	}, mock
}

func registerCompanyResponder(cnpj, legalName string) {
	httpmock.RegisterResponder("GET", fmt.Sprintf("http://registry.test/cnpj/v1/%s", cnpj),
		httpmock.NewStringResponder(200, fmt.Sprintf(`{"cnpj": %q, "razao_social": %q}`, cnpj, legalName)))
}

func TestCompanyLookupCachesResult(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	mockRegistryConfig()

	registerCompanyResponder("12345678000199", "ACME LTDA")

	companies := NewCompanyService(nil)

	first, err := companies.Lookup(context.Background(), "12345678000199")
	require.NoError(t, err)
	assert.Equal(t, "ACME LTDA", first.LegalName)

	second, err := companies.Lookup(context.Background(), "12345678000199")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// the second call never reached the network
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
	assert.Empty(t, companies.FailedLookups())
}

func TestCompanyLookupRecordsFailure(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	mockRegistryConfig()

	httpmock.RegisterResponder("GET", "http://registry.test/cnpj/v1/99887766000155",
		httpmock.NewStringResponder(404, `{"message": "CNPJ não encontrado"}`))

	companies := NewCompanyService(nil)

	record, err := companies.Lookup(context.Background(), "99887766000155")
	assert.Error(t, err)
	assert.Nil(t, record)
	assert.Equal(t, []string{"99887766000155"}, companies.FailedLookups())
}

func TestCompanyLookupClearsFailureOnRecovery(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	mockRegistryConfig()

	url := "http://registry.test/cnpj/v1/12345678000199"
	httpmock.RegisterResponder("GET", url, httpmock.NewStringResponder(500, `{}`))

	companies := NewCompanyService(nil)
	_, err := companies.Lookup(context.Background(), "12345678000199")
	assert.Error(t, err)
	assert.Len(t, companies.FailedLookups(), 1)

	// registry recovers
	registerCompanyResponder("12345678000199", "ACME LTDA")
	record, err := companies.Lookup(context.Background(), "12345678000199")
	require.NoError(t, err)
	assert.Equal(t, "ACME LTDA", record.LegalName)
	assert.Empty(t, companies.FailedLookups())
}

func TestRetryFailedLookupsRewritesDescriptions(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	f, mock := newTestFinanceiro(t)

	url := "http://registry.test/cnpj/v1/12345678000199"
	httpmock.RegisterResponder("GET", url, httpmock.NewStringResponder(500, `{}`))
	_, err := f.companies.Lookup(context.Background(), "12345678000199")
	assert.Error(t, err)

	registerCompanyResponder("12345678000199", "ACME LTDA")

	now := time.Now()
	mock.ExpectQuery("WHERE document =").
		WithArgs("12345678000199").
		WillReturnRows(sqlmock.NewRows([]string{"id", "transaction_id", "date", "description", "value", "direction", "category", "document", "import_id", "created_at"}).
			AddRow(1, "txn_1", now, "PIX RECEBIDO CNPJ 12345678000199", 150.00, "CREDIT", "PIX RECEBIDO", "12345678000199", "import_1", now))
	mock.ExpectExec("UPDATE transactions SET description").
		WithArgs("PIX RECEBIDO ACME LTDA (CNPJ: 12345678000199)", "txn_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	retried, recovered, err := f.RetryFailedLookups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, retried)
	assert.Equal(t, 1, recovered)
	assert.Empty(t, f.companies.FailedLookups())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetryFailedLookupsEmptySet(t *testing.T) {
	f, _ := newTestFinanceiro(t)

	retried, recovered, err := f.RetryFailedLookups(context.Background())
	require.NoError(t, err)
	assert.Zero(t, retried)
	assert.Zero(t, recovered)
}

func TestVerifyCompany(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	f, _ := newTestFinanceiro(t)
	registerCompanyResponder("12345678000199", "ACME LTDA")

	record, err := f.VerifyCompany(context.Background(), "12.345.678/0001-99")
	require.NoError(t, err)
	assert.Equal(t, "ACME LTDA", record.LegalName)

	_, err = f.VerifyCompany(context.Background(), "123")
	assert.Error(t, err)
}
