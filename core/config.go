package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env      string // DEV (local; default), TEST, QA, PROD
		Build    string
		Debug    bool
		TestMode bool
		WorkDir  string

		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		RollbarToken     string
		SendgridApiKey   string
		defaultFromEmail string

		PasswordResetTimeoutDelta time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		Backend  BackendConfig
		Table    TableConfig
	}

	ServerConfig struct {
		Host                    string
		Port                    int
		DebugHost               string
		ShutdownTimeout         time.Duration
		JWTExpirationDelta      time.Duration
		SessionCookieName       string
		SessionIdleTimeout      time.Duration
		SessionSweepInterval    time.Duration
		LoginRateLimitPerMinute int
		LoginRateLimitBurst     int
		DisableRequestLogs      bool
		SecureCookie            bool
		DefaultResource         string
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		InMemory      bool
	}

	BackendConfig struct {
		BaseURL           string
		Timeout           time.Duration
		DeleteConcurrency int
	}

	TableConfig struct {
		DefaultPageSize int
		SearchDebounce  time.Duration
		ToastTimeout    time.Duration
	}
)

// NewConfig loads the configuration of the current environment.
// Values are read from the environment (prefixed with the env name, eg. DEV_SECRETKEY)
// after loading config/.env.<env> if it exists.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("build", "develop")
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Syllabus")
	conf.SetDefault("secretKey", "8o(e#_kf3tx$-c4u%6vq+)w0!@n8^hj&1pzrs9b_lm=ay5d*gt")
	conf.SetDefault("frontendBaseURL", "http://localhost:8000")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("defaultFromEmail", "Syllabus <noreply@localhost>")
	conf.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	conf.SetDefault("serverHost", "")
	conf.SetDefault("serverPort", 8000)
	conf.SetDefault("serverDebugHost", "localhost:4000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("jwtExpirationDelta", 8*time.Hour)
	conf.SetDefault("sessionCookieName", "session")
	conf.SetDefault("sessionIdleTimeout", 2*time.Hour)
	conf.SetDefault("sessionSweepInterval", 10*time.Minute)
	conf.SetDefault("loginRateLimitPerMinute", 10)
	conf.SetDefault("loginRateLimitBurst", 5)
	conf.SetDefault("disableRequestLogs", false)
	conf.SetDefault("secureCookie", false)
	conf.SetDefault("defaultResource", "courses")

	conf.SetDefault("dbEngine", "postgres")
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", 5432)
	conf.SetDefault("dbName", "syllabus")
	conf.SetDefault("dbUser", "syllabus")
	conf.SetDefault("dbPassword", "")
	conf.SetDefault("dbAdminUser", "postgres")
	conf.SetDefault("dbAdminPassword", "")
	conf.SetDefault("dbDisableTLS", true)
	conf.SetDefault("dbInMemory", false)

	conf.SetDefault("backendBaseURL", "http://localhost:8080")
	conf.SetDefault("backendTimeout", 10*time.Second)
	conf.SetDefault("backendDeleteConcurrency", 8)

	conf.SetDefault("tableDefaultPageSize", 10)
	conf.SetDefault("tableSearchDebounce", 500*time.Millisecond)
	conf.SetDefault("tableToastTimeout", 3*time.Second)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
		conf.SetDefault("dbInMemory", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	workDir := Getwd()
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:                       env,
		Build:                     conf.GetString("build"),
		Debug:                     conf.GetBool("debug"),
		TestMode:                  conf.GetBool("testMode"),
		WorkDir:                   workDir,
		AppName:                   conf.GetString("appName"),
		SecretKey:                 conf.GetString("secretKey"),
		FrontendBaseURL:           conf.GetString("frontendBaseURL"),
		RollbarToken:              conf.GetString("rollbarToken"),
		SendgridApiKey:            conf.GetString("sendgridApiKey"),
		defaultFromEmail:          conf.GetString("defaultFromEmail"),
		PasswordResetTimeoutDelta: conf.GetDuration("passwordResetTimeoutDelta"),
		Server: ServerConfig{
			Host:                    conf.GetString("serverHost"),
			Port:                    conf.GetInt("serverPort"),
			DebugHost:               conf.GetString("serverDebugHost"),
			ShutdownTimeout:         conf.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:      conf.GetDuration("jwtExpirationDelta"),
			SessionCookieName:       conf.GetString("sessionCookieName"),
			SessionIdleTimeout:      conf.GetDuration("sessionIdleTimeout"),
			SessionSweepInterval:    conf.GetDuration("sessionSweepInterval"),
			LoginRateLimitPerMinute: conf.GetInt("loginRateLimitPerMinute"),
			LoginRateLimitBurst:     conf.GetInt("loginRateLimitBurst"),
			DisableRequestLogs:      conf.GetBool("disableRequestLogs"),
			SecureCookie:            conf.GetBool("secureCookie"),
			DefaultResource:         conf.GetString("defaultResource"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("dbEngine"),
			Host:          conf.GetString("dbHost"),
			Port:          conf.GetInt("dbPort"),
			Name:          conf.GetString("dbName"),
			User:          conf.GetString("dbUser"),
			Password:      conf.GetString("dbPassword"),
			AdminUser:     conf.GetString("dbAdminUser"),
			AdminPassword: conf.GetString("dbAdminPassword"),
			DisableTLS:    conf.GetBool("dbDisableTLS"),
			InMemory:      conf.GetBool("dbInMemory"),
		},
		Backend: BackendConfig{
			BaseURL:           strings.TrimSuffix(conf.GetString("backendBaseURL"), "/"),
			Timeout:           conf.GetDuration("backendTimeout"),
			DeleteConcurrency: conf.GetInt("backendDeleteConcurrency"),
		},
		Table: TableConfig{
			DefaultPageSize: conf.GetInt("tableDefaultPageSize"),
			SearchDebounce:  conf.GetDuration("tableSearchDebounce"),
			ToastTimeout:    conf.GetDuration("tableToastTimeout"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: no env lookup, no .env files.
func NewTestConfig() *Config {
	return &Config{
		Env:                       "TEST",
		Build:                     "test",
		TestMode:                  true,
		AppName:                   "Syllabus",
		SecretKey:                 "secret",
		FrontendBaseURL:           "http://localhost:8000",
		defaultFromEmail:          "Syllabus <noreply@localhost>",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: ServerConfig{
			Port:                    8000,
			ShutdownTimeout:         time.Second,
			JWTExpirationDelta:      10 * time.Minute,
			SessionCookieName:       "session",
			SessionIdleTimeout:      time.Hour,
			LoginRateLimitPerMinute: 600,
			LoginRateLimitBurst:     100,
			DisableRequestLogs:      true,
			DefaultResource:         "courses",
		},
		Database: DatabaseConfig{InMemory: true},
		Backend: BackendConfig{
			Timeout:           time.Second,
			DeleteConcurrency: 4,
		},
		Table: TableConfig{
			DefaultPageSize: 10,
			SearchDebounce:  20 * time.Millisecond,
			ToastTimeout:    3 * time.Second,
		},
	}
}

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
	}
	return *addr
}

func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (d DatabaseConfig) Address() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}
