package notification

import (
	"errors"
	"testing"

	"github.com/clearsettle/settle/config"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
)

func TestSlackNotificationPostsPayload(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	config.MockConfig(&config.Configuration{
		DataSource: config.DataSourceConfig{Dns: "postgres://localhost/settle"},
		Notification: config.Notification{
			Slack: config.SlackWebhook{WebhookUrl: "https://hooks.slack.com/services/T000/B000/XXX"},
		},
	})

	httpmock.RegisterResponder("POST", "https://hooks.slack.com/services/T000/B000/XXX",
		httpmock.NewStringResponder(200, `{"ok": true}`))

	SlackNotification(errors.New("settlement run failed for mch_123"))

	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}
