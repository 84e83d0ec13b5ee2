package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf holds the app configuration. It is loaded once at start up and must be
// treated as read-only afterwards.
var Conf *Config

type (
	Config struct {
		AppName                   string
		Env                       string // DEV (default), TEST, QA, PROD
		Debug                     bool
		TestMode                  bool
		Build                     string
		WorkDir                   string
		SecretKey                 string
		FrontendBaseURL           string
		DefaultFromName           string
		DefaultFromAddr           string
		SendgridApiKey            string
		RollbarToken              string
		PasswordResetTimeoutDelta time.Duration

		Server      ServerConfig
		Database    DatabaseConfig
		Redis       RedisConfig
		Entitlement EntitlementConfig
	}

	ServerConfig struct {
		Host                      string
		Port                      string
		DebugHost                 string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	// EntitlementConfig tunes the feature access policy and its cache.
	EntitlementConfig struct {
		// ExtraFreeFeatures lists feature names granted free-tier access
		// on top of the built-in allowlist.
		ExtraFreeFeatures []string
		CacheTTL          time.Duration
	}
)

func (c Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

func (c ServerConfig) Address() string { return c.Host + ":" + c.Port }

func (c DatabaseConfig) Address() string { return c.Host + ":" + c.Port }

func init() {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "EduHub")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "w#26eh5$vulq02s=a1t*n^d9&jss+curriculum^learns!")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromName", "EduHub")
	v.SetDefault("defaultFromAddr", "noreply@localhost")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "eduhub")
	v.SetDefault("database.user", "eduhub")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("entitlement.extraFreeFeatures", []string{})
	v.SetDefault("entitlement.cacheTTL", 5*time.Minute)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetDefault("env", env)
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	Conf = &Config{
		AppName:                   v.GetString("appName"),
		Env:                       env,
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		Build:                     v.GetString("build"),
		WorkDir:                   wd,
		SecretKey:                 v.GetString("secretKey"),
		FrontendBaseURL:           v.GetString("frontendBaseURL"),
		DefaultFromName:           v.GetString("defaultFromName"),
		DefaultFromAddr:           v.GetString("defaultFromAddr"),
		SendgridApiKey:            v.GetString("sendgridApiKey"),
		RollbarToken:              v.GetString("rollbarToken"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Port:                      v.GetString("server.port"),
			DebugHost:                 v.GetString("server.debugHost"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Entitlement: EntitlementConfig{
			ExtraFreeFeatures: v.GetStringSlice("entitlement.extraFreeFeatures"),
			CacheTTL:          v.GetDuration("entitlement.cacheTTL"),
		},
	}

	if env == "PROD" && Conf.RollbarToken == "" {
		fmt.Fprintln(os.Stderr, "WARNING: running in PROD without a rollbar token")
	}
}
