package config

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/tcfw/starchain/internal/utils/logging"
)

var (
	defaults = map[string]interface{}{
		"verbose":  false,
		"data_dir": "./data",
		"api_addr": ":8000",
	}
)

func init() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

func GetConfig() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("starchain")
	viper.AddConfigPath("/etc/starchain/")
	viper.AddConfigPath("$HOME/.starchain")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("STARCHAIN")
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error
			logging.Entry().Warn("no config found")
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	c := &Config{
		dataDir: viper.GetString("data_dir"),
		apiAddr: viper.GetString("api_addr"),
	}

	if viper.GetBool("verbose") {
		logging.SetLevel(logrus.DebugLevel)
		logging.WithField("level", "debug").Debug("setting log level")
	}

	return c, nil
}

type Config struct {
	dataDir string
	apiAddr string
}

// DataDir is the block store directory.
func (c *Config) DataDir() string {
	return c.dataDir
}

// APIAddr is the REST listen address.
func (c *Config) APIAddr() string {
	return c.apiAddr
}
