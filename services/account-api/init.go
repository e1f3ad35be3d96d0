package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/db"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/messaging"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/usermanagement/pwhash"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/utils"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_ACCOUNT_DB_USERNAME = "ACCOUNT_DB_USERNAME"
	ENV_ACCOUNT_DB_PASSWORD = "ACCOUNT_DB_PASSWORD"

	ENV_USER_JWT_SIGN_KEY = "USER_JWT_SIGN_KEY"

	ENV_SMTP_USERNAME = "SMTP_USERNAME"
	ENV_SMTP_PASSWORD = "SMTP_PASSWORD"
)

type AccountApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`
	} `json:"gin_config" yaml:"gin_config"`

	// user management configs
	UserManagementConfig struct {
		PWHashing struct {
			Argon2Memory      uint32 `json:"argon2_memory" yaml:"argon2_memory"`
			Argon2Iterations  uint32 `json:"argon2_iterations" yaml:"argon2_iterations"`
			Argon2Parallelism uint8  `json:"argon2_parallelism" yaml:"argon2_parallelism"`
		} `json:"pw_hashing" yaml:"pw_hashing"`
		UserJWTConfig struct {
			SignKey   string        `json:"sign_key" yaml:"sign_key"`
			ExpiresIn time.Duration `json:"expires_in" yaml:"expires_in"`
		} `json:"user_jwt_config" yaml:"user_jwt_config"`
	} `json:"user_management_config" yaml:"user_management_config"`

	// DB configs
	DBConfigs struct {
		AccountDB db.DBConfigYaml `json:"account_db" yaml:"account_db"`
	} `json:"db_configs" yaml:"db_configs"`

	// path to the sqlite file used as local fallback store
	LocalStorePath string `json:"local_store_path" yaml:"local_store_path"`

	MessagingConfigs struct {
		// log codes instead of sending emails
		UseLogSender bool `json:"use_log_sender" yaml:"use_log_sender"`
		// optional separate file with the smtp server list, takes
		// precedence over the inline smtp_servers block
		SmtpServersFile string                   `json:"smtp_servers_file" yaml:"smtp_servers_file"`
		SmtpServers     messaging.SmtpServerList `json:"smtp_servers" yaml:"smtp_servers"`
	} `json:"messaging_configs" yaml:"messaging_configs"`
}

var conf AccountApiConfig

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(
		conf.Logging.LogLevel,
		conf.Logging.IncludeSrc,
		conf.Logging.LogToFile,
		conf.Logging.Filename,
		conf.Logging.MaxSize,
		conf.Logging.MaxAge,
		conf.Logging.MaxBackups,
		conf.Logging.CompressOldLogs,
	)

	// smtp servers may live in a separate file next to the main config
	if conf.MessagingConfigs.SmtpServersFile != "" {
		err = conf.MessagingConfigs.SmtpServers.ReadFromFile(conf.MessagingConfigs.SmtpServersFile)
		if err != nil {
			panic(err)
		}
	}

	// Override secrets from environment variables
	secretsOverride()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// init argon2
	pwhash.InitArgonParams(
		conf.UserManagementConfig.PWHashing.Argon2Memory,
		conf.UserManagementConfig.PWHashing.Argon2Iterations,
		conf.UserManagementConfig.PWHashing.Argon2Parallelism,
	)

	if conf.LocalStorePath == "" {
		conf.LocalStorePath = "daily-dish-local.db"
	}
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_ACCOUNT_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.AccountDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_ACCOUNT_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.AccountDB.Password = dbPassword
	}

	if jwtSignKey := os.Getenv(ENV_USER_JWT_SIGN_KEY); jwtSignKey != "" {
		conf.UserManagementConfig.UserJWTConfig.SignKey = jwtSignKey
	}

	if smtpUsername := os.Getenv(ENV_SMTP_USERNAME); smtpUsername != "" {
		for i := range conf.MessagingConfigs.SmtpServers.Servers {
			conf.MessagingConfigs.SmtpServers.Servers[i].SetUsername(smtpUsername)
		}
	}

	if smtpPassword := os.Getenv(ENV_SMTP_PASSWORD); smtpPassword != "" {
		for i := range conf.MessagingConfigs.SmtpServers.Servers {
			conf.MessagingConfigs.SmtpServers.Servers[i].SetPassword(smtpPassword)
		}
	}
}
