package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"sessionstate/internal/codec"
	"sessionstate/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.BindEnv("logger.level", "SESSIOND_LOG_LEVEL")
	v.BindEnv("store.format", "SESSIOND_STORE_FORMAT")
	v.BindEnv("persistence.saveInterval", "SESSIOND_SAVE_INTERVAL")
	v.BindEnv("cache.enabled", "SESSIOND_CACHE_ENABLED")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "SessionStateDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

// NewStoreFormat resolves the wire format configured for the store.
func NewStoreFormat(conf *structures.Config) (codec.Format, error) {
	return codec.ParseFormat(conf.Store.Format)
}
