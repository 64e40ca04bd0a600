/*
Copyright 2024 ClearSettle Authors.

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
	"github.com/gin-gonic/gin"

	"github.com/clearsettle/settle"
	"github.com/clearsettle/settle/api/middleware"
	"github.com/clearsettle/settle/config"
)

type Api struct {
	settle *settle.Settle
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/settlements", a.GenerateSettlement)
	router.POST("/settlements/queue", a.QueueSettlement)
	router.GET("/settlements/:id", a.GetSettlement)

	router.GET("/reserves/releaseable/:merchant_id", a.GetReleaseableReserves)
	router.POST("/reserves/release/:merchant_id", a.ReleaseMaturedReserves)

	return a.router
}

func NewAPI(s *settle.Settle) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{settle: s, router: r}
}
