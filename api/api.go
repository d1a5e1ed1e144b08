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
	"time"

	"github.com/gin-gonic/gin"

	"github.com/af360bank/financeiro"
	"github.com/af360bank/financeiro/api/middleware"
	"github.com/af360bank/financeiro/config"
)

type Api struct {
	financeiro *financeiro.Financeiro
	router     *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/transactions/upload", a.UploadStatement)
	router.GET("/transactions/upload/:id/progress", a.GetImportProgress)
	router.GET("/transactions", a.GetTransactions)
	router.GET("/transactions/summary", a.GetCategorySummaries)

	router.GET("/companies/:cnpj", a.VerifyCompany)
	router.POST("/companies/retry", a.RetryCompanyLookups)

	return a.router
}

func NewAPI(f *financeiro.Financeiro) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "server running...")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now()})
	})

	return &Api{financeiro: f, router: r}
}
