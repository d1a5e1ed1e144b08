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

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	model2 "github.com/af360bank/financeiro/api/model"
	"github.com/af360bank/financeiro/internal/apierror"
)

// UploadStatement accepts a multipart statement file and starts one import
// job. The response carries the import id for progress polling.
func (a Api) UploadStatement(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File upload failed"})
		return
	}
	defer file.Close()

	importID, err := a.financeiro.IngestStatement(c.Request.Context(), file, header.Filename)
	if err != nil {
		logrus.Error(err)
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"import_id": importID, "message": "statement accepted for processing"})
}

// GetImportProgress returns the progress state for an import job. Reclaimed
// jobs answer 404.
func (a Api) GetImportProgress(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /transactions/upload/:id/progress"})
		return
	}

	job, ok := a.financeiro.GetImportJob(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "import job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// GetTransactions reads persisted transactions filtered by direction,
// category, document and date range.
func (a Api) GetTransactions(c *gin.Context) {
	var query model2.TransactionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := query.ValidateTransactionQuery(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transactions, err := a.financeiro.GetTransactions(c.Request.Context(), query.ToFilter(), query.Limit, query.Offset)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions, "count": len(transactions)})
}

// GetCategorySummaries aggregates persisted transactions per category.
func (a Api) GetCategorySummaries(c *gin.Context) {
	summaries, err := a.financeiro.GetCategorySummaries(c.Request.Context())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}
