package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/clearsettle/settle/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGetExchangeRates_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"rate_id", "currency", "card_scheme", "day", "buy_rate", "sell_rate", "created_at"}).
		AddRow("rate_1", "USD", "VISA", day, "0.94", "0.92", time.Now()).
		AddRow("rate_2", "GBP", "MASTERCARD", day, "1.18", "1.15", time.Now())

	mock.ExpectQuery("SELECT rate_id, currency, card_scheme, day, buy_rate, sell_rate").
		WillReturnRows(rows)

	quotes, err := ds.GetExchangeRates(context.Background(), []string{"USD", "GBP"})
	assert.NoError(t, err)
	assert.Len(t, quotes, 2)
	assert.Equal(t, model.DayOf(day), quotes[0].Day)
	assert.True(t, quotes[0].SellRate.Equal(decimal.NewFromFloat(0.92)))
	assert.True(t, quotes[1].BuyRate.Equal(decimal.NewFromFloat(1.18)))
}

// A transient query failure is retried; the second attempt's rows win.
func TestGetExchangeRates_RetriesTransientFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT rate_id, currency, card_scheme").
		WillReturnError(errors.New("connection reset by peer"))

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT rate_id, currency, card_scheme").
		WillReturnRows(sqlmock.NewRows([]string{"rate_id", "currency", "card_scheme", "day", "buy_rate", "sell_rate", "created_at"}).
			AddRow("rate_1", "USD", "VISA", day, "0.94", "0.92", time.Now()))

	quotes, err := ds.GetExchangeRates(context.Background(), []string{"USD"})
	assert.NoError(t, err)
	assert.Len(t, quotes, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
