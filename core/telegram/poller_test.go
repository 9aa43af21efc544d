package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/sitebot/core/config"
)

func TestBuildPoller(t *testing.T) {
	cfg := &coreconfig.Config{}
	lp, ok := BuildPoller(cfg).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, defaultLongPollTimeout, lp.Timeout)

	cfg.Telegram.LongPollTimeoutSeconds = 30
	lp = BuildPoller(cfg).(*tele.LongPoller)
	assert.Equal(t, 30*time.Second, lp.Timeout)

	cfg.Telegram.RunMode = coreconfig.RunModeWebhook
	cfg.Webhook = coreconfig.WebhookConfig{URL: "https://bot.example.org/hook", Listen: "0.0.0.0", Port: 8443}
	wh, ok := BuildPoller(cfg).(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", wh.Listen)
	assert.Equal(t, "https://bot.example.org/hook", wh.Endpoint.PublicURL)
}
