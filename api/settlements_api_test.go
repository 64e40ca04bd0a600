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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/clearsettle/settle"
	"github.com/clearsettle/settle/config"
	"github.com/clearsettle/settle/database"
	"github.com/clearsettle/settle/model"
)

// setupRouter wires a real engine over a sqlmock-backed datasource, no
// Redis, so every request runs the full pipeline against mocked SQL.
func setupRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	config.MockConfig(&config.Configuration{
		DataSource: config.DataSourceConfig{Dns: "postgres://localhost/settle"},
	})

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	engine, err := settle.NewSettle(database.Datasource{Conn: db}, nil)
	assert.NoError(t, err)

	return NewAPI(engine).Router(), mock
}

func postJSON(router *gin.Engine, route string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, route, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestGenerateSettlementAPI_Success(t *testing.T) {
	router, mock := setupRouter(t)

	createdAt := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, transaction_id, merchant_id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "transaction_id", "merchant_id", "amount", "currency", "card_scheme", "type", "status", "created_at", "meta_data"}).
			AddRow(1, "txn_1", "mch_123", int64(10000), "EUR", "VISA", model.TypeSale, model.StatusApproved, createdAt, nil))
	mock.ExpectQuery("SELECT fee_id, merchant_id, name").
		WillReturnRows(sqlmock.NewRows([]string{"fee_id", "merchant_id", "name", "frequency", "is_percentage", "value", "effective_from", "effective_to"}))
	mock.ExpectQuery("SELECT merchant_id, currency, percentage").
		WillReturnRows(sqlmock.NewRows([]string{"merchant_id", "currency", "percentage", "holding_days", "effective_from"}))
	mock.ExpectQuery("SELECT reserve_id, merchant_id, original_amount").
		WillReturnRows(sqlmock.NewRows([]string{"reserve_id", "merchant_id", "original_amount", "original_currency", "reserve_amount", "exchange_rate", "hold_start_date", "release_date", "status", "created_at"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO settle.settlement_runs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	resp := postJSON(router, "/settlements", map[string]string{
		"merchant_id": "mch_123",
		"start_date":  "2024-01-15",
		"end_date":    "2024-01-15",
	})

	assert.Equal(t, http.StatusCreated, resp.Code)

	var payload model.Settlement
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "mch_123", payload.MerchantID)
	assert.NotEmpty(t, payload.SettlementID)
	assert.Contains(t, payload.Totals, "EUR")
	assert.Equal(t, int64(1), payload.Totals["EUR"].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateSettlementAPI_ValidatesPayload(t *testing.T) {
	router, _ := setupRouter(t)

	resp := postJSON(router, "/settlements", map[string]string{
		"merchant_id": "mch_123",
		"start_date":  "15/01/2024",
		"end_date":    "2024-01-15",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = postJSON(router, "/settlements", map[string]string{
		"start_date": "2024-01-15",
		"end_date":   "2024-01-15",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = postJSON(router, "/settlements", map[string]interface{}{
		"merchant_id": "mch_123",
		"start_date":  "2024-01-15",
		"end_date":    "2024-01-15",
		"currencies":  []string{"usd"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

// Without Redis the queue endpoint refuses instead of dropping work.
func TestQueueSettlementAPI_NoQueueConfigured(t *testing.T) {
	router, _ := setupRouter(t)

	resp := postJSON(router, "/settlements/queue", map[string]string{
		"merchant_id": "mch_123",
		"start_date":  "2024-01-15",
		"end_date":    "2024-01-15",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetSettlementAPI_StorageError(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectQuery("SELECT payload").
		WillReturnError(sqlmock.ErrCancelled)

	req := httptest.NewRequest(http.MethodGet, "/settlements/stl_missing", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestGetReleaseableReservesAPI(t *testing.T) {
	router, mock := setupRouter(t)

	holdStart := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	release := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT reserve_id, merchant_id, original_amount").
		WillReturnRows(sqlmock.NewRows([]string{"reserve_id", "merchant_id", "original_amount", "original_currency", "reserve_amount", "exchange_rate", "hold_start_date", "release_date", "status", "created_at"}).
			AddRow("rsv_1", "mch_123", "50.00", "USD", "4.60", "0.92", holdStart, release, model.ReserveStatusPending, time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/reserves/releaseable/mch_123?as_of=2024-03-01", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var payload struct {
		MerchantID  string               `json:"merchant_id"`
		AsOf        string               `json:"as_of"`
		Releaseable []model.ReserveEntry `json:"releaseable"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "2024-03-01", payload.AsOf)
	assert.Len(t, payload.Releaseable, 1)
	assert.Equal(t, "rsv_1", payload.Releaseable[0].ReserveID)
}

func TestGetReleaseableReservesAPI_BadAsOf(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/reserves/releaseable/mch_123?as_of=yesterday", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
