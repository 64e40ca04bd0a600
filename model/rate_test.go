package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func quote(currency, scheme, day string, buy, sell float64) ExchangeRate {
	d, _ := ParseDay(day)
	return ExchangeRate{
		Currency:   currency,
		CardScheme: scheme,
		Day:        d,
		BuyRate:    decimal.NewFromFloat(buy),
		SellRate:   decimal.NewFromFloat(sell),
	}
}

func TestRateTableExactLookup(t *testing.T) {
	table := NewRateTable([]ExchangeRate{quote("USD", "VISA", "2024-01-15", 0.94, 0.92)})
	day, _ := ParseDay("2024-01-15")

	sell, ok := table.Get(NewRateKey(SideSell, "USD", "visa", day))
	assert.True(t, ok)
	assert.True(t, sell.Equal(decimal.NewFromFloat(0.92)))

	buy, ok := table.Get(NewRateKey(SideBuy, "USD", "VISA", day))
	assert.True(t, ok)
	assert.True(t, buy.Equal(decimal.NewFromFloat(0.94)))
}

func TestRateTableSchemeNormalization(t *testing.T) {
	table := NewRateTable([]ExchangeRate{quote("USD", "mastercard", "2024-01-15", 0.94, 0.92)})
	day, _ := ParseDay("2024-01-15")

	_, ok := table.Get(NewRateKey(SideSell, "USD", "MASTERCARD", day))
	assert.True(t, ok)
}

func TestRateTableAnyScheme(t *testing.T) {
	table := NewRateTable([]ExchangeRate{quote("USD", "VISA", "2024-01-15", 0.94, 0.92)})
	day, _ := ParseDay("2024-01-15")

	rate, ok := table.AnyScheme(SideSell, "USD", day)
	assert.True(t, ok)
	assert.True(t, rate.Equal(decimal.NewFromFloat(0.92)))

	otherDay, _ := ParseDay("2024-01-16")
	_, ok = table.AnyScheme(SideSell, "USD", otherDay)
	assert.False(t, ok)
}

func TestRateTableAnyDay(t *testing.T) {
	table := NewRateTable([]ExchangeRate{quote("USD", "VISA", "2024-01-15", 0.94, 0.92)})

	rate, ok := table.AnyDay(SideBuy, "USD")
	assert.True(t, ok)
	assert.True(t, rate.Equal(decimal.NewFromFloat(0.94)))

	_, ok = table.AnyDay(SideBuy, "GBP")
	assert.False(t, ok)
}

func TestReserveEntryReleaseable(t *testing.T) {
	release, _ := ParseDay("2024-02-14")
	entry := ReserveEntry{Status: ReserveStatusPending, ReleaseDate: release}

	assert.True(t, entry.Releaseable(release))
	assert.True(t, entry.Releaseable(release.AddDays(1)))
	assert.False(t, entry.Releaseable(release.AddDays(-1)))

	entry.Status = ReserveStatusReleased
	assert.False(t, entry.Releaseable(release.AddDays(10)))
}

func TestFeeDefinitionEffectiveAt(t *testing.T) {
	from, _ := ParseDay("2024-01-01")
	to, _ := ParseDay("2024-06-30")

	bounded := FeeDefinition{EffectiveFrom: from, EffectiveTo: to}
	assert.True(t, bounded.EffectiveAt(from))
	assert.True(t, bounded.EffectiveAt(to))
	assert.False(t, bounded.EffectiveAt(from.AddDays(-1)))
	assert.False(t, bounded.EffectiveAt(to.AddDays(1)))

	openEnded := FeeDefinition{EffectiveFrom: from}
	assert.True(t, openEnded.EffectiveAt(to.AddDays(365)))
}
