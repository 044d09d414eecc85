package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Sheets backends
const (
	BackendMemory = "memory"
	BackendXLSX   = "xlsx"
	BackendGoogle = "google"
)

type (
	ServerConfig struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	SheetsConfig struct {
		Backend         string // memory | xlsx | google
		SpreadsheetID   string
		XLSXDir         string
		CredentialsFile string
		TemplatePrefix  string
	}

	AuthConfig struct {
		AllowedDomains []string
	}

	LookupConfig struct {
		Debounce time.Duration
	}

	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		SecretKey    string
		RollbarToken string
		WorkDir      string

		Server ServerConfig
		Sheets SheetsConfig
		Auth   AuthConfig
		Lookup LookupConfig
	}
)

// NewConfig loads the configuration from defaults, the optional `config/.env.<env>` file and ENV-prefixed variables.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Scoredesk")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "w7k!9m-2hq$ub+0c_s3#e1r5t(z)y8x4v6n%j@p&l*a")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("server.host", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 12*time.Hour)
	conf.SetDefault("sheets.backend", BackendMemory)
	conf.SetDefault("sheets.spreadsheetId", "")
	conf.SetDefault("sheets.xlsxDir", "data")
	conf.SetDefault("sheets.credentialsFile", "")
	conf.SetDefault("sheets.templatePrefix", "Template_")
	conf.SetDefault("auth.allowedDomains", []string{"@gw.impact7.kr", "@impact7.kr"})
	conf.SetDefault("lookup.debounce", 800*time.Millisecond)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		Build:        conf.GetString("build"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
		WorkDir:      wd,
		Server: ServerConfig{
			Host:               conf.GetString("server.host"),
			DebugHost:          conf.GetString("server.debugHost"),
			ShutdownTimeout:    conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: conf.GetDuration("server.jwtExpirationDelta"),
		},
		Sheets: SheetsConfig{
			Backend:         strings.ToLower(conf.GetString("sheets.backend")),
			SpreadsheetID:   conf.GetString("sheets.spreadsheetId"),
			XLSXDir:         conf.GetString("sheets.xlsxDir"),
			CredentialsFile: conf.GetString("sheets.credentialsFile"),
			TemplatePrefix:  conf.GetString("sheets.templatePrefix"),
		},
		Auth: AuthConfig{
			AllowedDomains: conf.GetStringSlice("auth.allowedDomains"),
		},
		Lookup: LookupConfig{
			Debounce: conf.GetDuration("lookup.debounce"),
		},
	}
}
