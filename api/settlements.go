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
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/clearsettle/settle/api/model"
	"github.com/clearsettle/settle/internal/apierror"
	"github.com/clearsettle/settle/model"
)

func (a Api) GenerateSettlement(c *gin.Context) {
	var req model2.GenerateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.ValidateGenerateSettlement(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	rng, err := req.ToRange()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.settle.GenerateSettlement(c.Request.Context(), req.MerchantID, rng, req.Currencies)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) QueueSettlement(c *gin.Context) {
	var req model2.GenerateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.ValidateGenerateSettlement(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	rng, err := req.ToRange()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := a.settle.QueueSettlement(req.MerchantID, rng, req.Currencies); err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"merchant_id": req.MerchantID, "range": rng.String(), "status": "queued"})
}

func (a Api) GetSettlement(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.settle.GetSettlement(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// asOfDay reads the optional as_of query parameter, defaulting to
// today.
func asOfDay(c *gin.Context) (model.Day, error) {
	raw := c.Query("as_of")
	if raw == "" {
		return model.Today(), nil
	}
	return model.ParseDay(raw)
}

func (a Api) GetReleaseableReserves(c *gin.Context) {
	merchantID, passed := c.Params.Get("merchant_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "merchant_id is required. pass it in the route /:merchant_id"})
		return
	}

	asOf, err := asOfDay(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "please format as_of as 'YYYY-MM-DD'"})
		return
	}

	resp, err := a.settle.GetReleaseableReserves(c.Request.Context(), merchantID, asOf)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"merchant_id": merchantID, "as_of": asOf.String(), "releaseable": resp})
}

func (a Api) ReleaseMaturedReserves(c *gin.Context) {
	merchantID, passed := c.Params.Get("merchant_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "merchant_id is required. pass it in the route /:merchant_id"})
		return
	}

	asOf, err := asOfDay(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "please format as_of as 'YYYY-MM-DD'"})
		return
	}

	released, err := a.settle.ReleaseMaturedReserves(c.Request.Context(), merchantID, asOf)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error(), "released": released})
		return
	}

	c.JSON(http.StatusOK, gin.H{"merchant_id": merchantID, "as_of": asOf.String(), "released": released})
}
