// Package conf loads the optional tuning file that adjusts the watchdog's
// ambient timing and sizing constants. Unlike a long-running service, this
// tool has no mandatory configuration: every field here has a workable
// default, and per-invocation parameters always come from the request
// document, never from this file.
package conf

import (
	"github.com/spf13/viper"
)

// Load reads confPath, if given, into a *viper.Viper. An empty confPath is
// not an error: it returns nil, and callers should fall back to Tuning
// defaults.
func Load(confPath string) (*viper.Viper, error) {
	if confPath == "" {
		return nil, nil
	}

	v := viper.New()
	v.SetConfigFile(confPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return v, nil
}
