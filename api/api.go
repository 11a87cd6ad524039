/*
Copyright 2024 Arigo Pay Authors.

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

	arigopay "github.com/arigohub24/arigo-pay"
	"github.com/arigohub24/arigo-pay/api/middleware"
	"github.com/arigohub24/arigo-pay/config"
	"github.com/gin-gonic/gin"
)

type Api struct {
	engine *arigopay.Arigopay
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/sessions", a.CreateSession)
	router.GET("/sessions/:id", a.GetSession)
	router.PATCH("/sessions/:id/values", a.UpdateSessionValues)
	router.POST("/sessions/:id/advance", a.AdvanceSession)
	router.POST("/sessions/:id/retreat", a.RetreatSession)
	router.POST("/sessions/:id/cancel", a.CancelSession)
	router.POST("/sessions/:id/authorize", a.AuthorizeSession)
	router.GET("/sessions/:id/attempts", a.GetAuthorizationAttempts)
	router.GET("/sessions/:id/result", a.GetSubmissionResult)

	router.GET("/flows", a.GetAllFlows)

	router.POST("/templates", a.CreateTemplate)
	router.GET("/templates/:id", a.GetTemplate)
	router.GET("/templates", a.GetAllTemplates)
	return a.router
}

func NewAPI(engine *arigopay.Arigopay) *Api {
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

	return &Api{engine: engine, router: r}
}
