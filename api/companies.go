package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/af360bank/financeiro/internal/apierror"
)

// VerifyCompany resolves a CNPJ against the registry through the same caches
// the enricher uses.
func (a Api) VerifyCompany(c *gin.Context) {
	cnpj, passed := c.Params.Get("cnpj")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cnpj is required. pass cnpj in the route /companies/:cnpj"})
		return
	}

	record, err := a.financeiro.VerifyCompany(c.Request.Context(), cnpj)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

// RetryCompanyLookups re-attempts every failed registry lookup and rewrites
// the descriptions of rows whose document recovered.
func (a Api) RetryCompanyLookups(c *gin.Context) {
	retried, recovered, err := a.financeiro.RetryFailedLookups(c.Request.Context())
	if err != nil {
		logrus.Error(err)
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"retried": retried, "recovered": recovered})
}
