package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"sentarb/internal/logger"
)

// WatchLogLevel reloads app.log_level when the config file changes, so log
// verbosity can be adjusted on a running agent without a restart. Only the
// level is hot-reloaded; everything else requires a restart.
func WatchLogLevel(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			logger.Errorf("config reload failed: %v", err)
			return
		}
		level := v.GetString("app.log_level")
		logger.SetLevel(level)
		logger.Infof("config changed (%s): log level now %q", evt.Name, level)
	})
	v.WatchConfig()
	return nil
}
