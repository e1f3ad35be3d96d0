package db

import "fmt"

type DBConfig struct {
	URI             string
	DBNamePrefix    string
	Timeout         int
	MaxPoolSize     uint64
	IdleConnTimeout int
}

type DBConfigYaml struct {
	ConnectionStr    string `yaml:"connection_str"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	ConnectionPrefix string `yaml:"connection_prefix"`
	Timeout          int    `yaml:"timeout"`
	IdleConnTimeout  int    `yaml:"idle_conn_timeout"`
	MaxPoolSize      int    `yaml:"max_pool_size"`
	DBNamePrefix     string `yaml:"db_name_prefix"`
}

func DBConfigFromYamlObj(y DBConfigYaml) DBConfig {
	uri := y.ConnectionStr
	if y.Username != "" || y.Password != "" {
		uri = fmt.Sprintf(`mongodb%s://%s:%s@%s`, y.ConnectionPrefix, y.Username, y.Password, y.ConnectionStr)
	}
	return DBConfig{
		URI:             uri,
		Timeout:         y.Timeout,
		IdleConnTimeout: y.IdleConnTimeout,
		MaxPoolSize:     uint64(y.MaxPoolSize),
		DBNamePrefix:    y.DBNamePrefix,
	}
}
