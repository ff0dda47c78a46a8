package aliasql

import (
	"strings"

	"github.com/spf13/viper"
)

// Configuration keys read by LoadConnectionProps
const (
	ConfigDriver       = "driver"
	ConfigDSN          = "dsn"
	ConfigServiceName  = "service_name"
	ConfigMaxIdleConns = "max_idle_conns"
	ConfigMaxOpenConns = "max_open_conns"
	ConfigMaxIdleTime  = "max_idle_time"
	ConfigMaxLifeTime  = "max_life_time"
)

// EnvPrefix is prepended to every configuration key when read from the environment
const EnvPrefix = "ALIASQL"

// NewViper returns a viper instance that reads the connection settings from
// ALIASQL_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault(ConfigDriver, "postgres")
	return v
}

// LoadConnectionProps reads connection settings from v. Pool limits that are
// not set are left to database/sql.
func LoadConnectionProps(v *viper.Viper) ConnectionProps {
	props := ConnectionProps{
		Driver:     v.GetString(ConfigDriver),
		ConnString: v.GetString(ConfigDSN),
	}

	if v.IsSet(ConfigServiceName) && v.GetString(ConfigServiceName) != "" {
		serviceName := v.GetString(ConfigServiceName)
		props.ServiceName = &serviceName
	}

	props.MaxIdleConns = optionalInt(v, ConfigMaxIdleConns)
	props.MaxOpenConns = optionalInt(v, ConfigMaxOpenConns)
	props.MaxIdleTime = optionalInt(v, ConfigMaxIdleTime)
	props.MaxLifeTime = optionalInt(v, ConfigMaxLifeTime)

	return props
}

func optionalInt(v *viper.Viper, key string) *int {
	if !v.IsSet(key) {
		return nil
	}
	value := v.GetInt(key)
	return &value
}
