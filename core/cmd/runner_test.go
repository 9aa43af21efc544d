package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/sitebot/core/config"
	coretelegram "github.com/m3rciful/sitebot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type app struct{ opts coretelegram.RunOptions }

func (a app) TelegramRunOptions() (coretelegram.RunOptions, error) { return a.opts, nil }

func TestConfigPath(t *testing.T) {
	t.Setenv("SITEBOT_CONFIG", "")
	_, err := ConfigPath(Options{ConfigEnvVar: "SITEBOT_CONFIG"})
	assert.Error(t, err)

	p, err := ConfigPath(Options{ConfigEnvVar: "SITEBOT_CONFIG", DefaultConfigPath: "configs/config.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "configs/config.yaml", p)

	t.Setenv("SITEBOT_CONFIG", "/etc/sitebot.yaml")
	p, err = ConfigPath(Options{ConfigEnvVar: "SITEBOT_CONFIG"})
	require.NoError(t, err)
	assert.Equal(t, "/etc/sitebot.yaml", p)
}

func TestRunWrapsLifecycleHooks(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	var order []string
	cfg := &coreconfig.Config{}

	err := Run(Options{
		DefaultConfigPath: "cfg.yaml",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			assert.Equal(t, "cfg.yaml", path)
			return carrier{cfg: cfg}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			return app{opts: coretelegram.RunOptions{
				Config:  cfg,
				OnStart: func(context.Context, coretelegram.Runtime) error { order = append(order, "start"); return nil },
				OnStop:  func(context.Context, coretelegram.Runtime) error { order = append(order, "stop"); return nil },
			}}, nil
		},
		ShutdownLogger: func() error { order = append(order, "logger"); return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "stop", "logger"}, order)
}

func TestRunFailsOnBootstrapError(t *testing.T) {
	boom := errors.New("boom")
	err := Run(Options{
		DefaultConfigPath: "cfg.yaml",
		LoadConfig:        func(string) (ConfigCarrier, error) { return carrier{cfg: &coreconfig.Config{}}, nil },
		Bootstrap:         func(context.Context, ConfigCarrier) (TelegramApp, error) { return nil, boom },
		ShutdownLogger:    func() error { return nil },
	})
	assert.ErrorIs(t, err, boom)

	err = Run(Options{
		DefaultConfigPath: "cfg.yaml",
		LoadConfig:        func(string) (ConfigCarrier, error) { return carrier{}, nil },
		Bootstrap:         func(context.Context, ConfigCarrier) (TelegramApp, error) { return nil, boom },
	})
	assert.ErrorContains(t, err, "missing core configuration")
}
