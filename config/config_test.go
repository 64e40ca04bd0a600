package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settle.json")
	err := os.WriteFile(path, []byte(content), 0o644)
	assert.NoError(t, err)
	return path
}

func TestInitConfigFromFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"project_name": "settle-test",
		"data_source": {"dns": "postgres://localhost:5432/settle"},
		"redis": {"dns": "localhost:6379"},
		"settlement": {"reporting_currency": "usd"}
	}`)

	err := InitConfig(path)
	assert.NoError(t, err)

	cnf, err := Fetch()
	assert.NoError(t, err)
	assert.Equal(t, "settle-test", cnf.ProjectName)
	assert.Equal(t, "USD", cnf.Settlement.ReportingCurrency)
	assert.Equal(t, DEFAULT_PORT, cnf.Server.Port)
	assert.Equal(t, 60, cnf.Settlement.RateCacheTTLMin)
	assert.Equal(t, "settle:runs", cnf.Queue.SettlementQueue)
}

func TestInitConfigRequiresDataSource(t *testing.T) {
	path := writeConfigFile(t, `{"redis": {"dns": "localhost:6379"}}`)

	err := InitConfig(path)
	assert.Error(t, err)
}

func TestInitConfigRedisOptional(t *testing.T) {
	path := writeConfigFile(t, `{"data_source": {"dns": "postgres://localhost:5432/settle"}}`)

	err := InitConfig(path)
	assert.NoError(t, err)

	cnf, err := Fetch()
	assert.NoError(t, err)
	assert.Empty(t, cnf.Redis.Dns)
	assert.Equal(t, DEFAULT_REPORTING_CURRENCY, cnf.Settlement.ReportingCurrency)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"data_source": {"dns": "postgres://localhost:5432/settle"},
		"settlement": {"reporting_currency": "EUR"}
	}`)

	t.Setenv("SETTLE_REPORTING_CURRENCY", "GBP")

	err := InitConfig(path)
	assert.NoError(t, err)

	cnf, err := Fetch()
	assert.NoError(t, err)
	assert.Equal(t, "GBP", cnf.Settlement.ReportingCurrency)
}

func TestMockConfigDefaultsReportingCurrency(t *testing.T) {
	MockConfig(&Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost:5432/settle"},
	})

	cnf, err := Fetch()
	assert.NoError(t, err)
	assert.Equal(t, DEFAULT_REPORTING_CURRENCY, cnf.Settlement.ReportingCurrency)
}
