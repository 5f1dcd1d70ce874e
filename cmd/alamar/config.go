package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/alamarhq/alamar/internal/logger"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultSMTPPort     = 587
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key used to verify actor tokens (symmetric)
	SecretKey string

	// Environment
	Environment string

	// Mailbox notified about new withdrawal requests
	FinanceEmail string

	// SMTP delivery; notifications are disabled when Host is empty
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// Cloudinary receipt storage; uploads are disabled when CloudName is empty
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		Environment: defaultEnvironment,
		SMTPPort:    defaultSMTPPort,
	}
}

// Load variables from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}
	setInt := func(o *int) func(value string) {
		return func(value string) {
			if parsed, err := strconv.Atoi(value); err == nil {
				*o = parsed
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":           setString(&c.ListenAddr),
		"DATABASE_URI":          setString(&c.DatabaseDSN),
		"SECRET_KEY":            setString(&c.SecretKey),
		"LOG_LEVEL":             setString(&c.LogLevel),
		"ENVIRONMENT":           setString(&c.Environment),
		"FINANCE_EMAIL":         setString(&c.FinanceEmail),
		"SMTP_HOST":             setString(&c.SMTPHost),
		"SMTP_PORT":             setInt(&c.SMTPPort),
		"SMTP_USERNAME":         setString(&c.SMTPUsername),
		"SMTP_PASSWORD":         setString(&c.SMTPPassword),
		"SMTP_FROM":             setString(&c.SMTPFrom),
		"CLOUDINARY_CLOUD_NAME": setString(&c.CloudinaryCloudName),
		"CLOUDINARY_API_KEY":    setString(&c.CloudinaryAPIKey),
		"CLOUDINARY_API_SECRET": setString(&c.CloudinaryAPISecret),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("alamar", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.FinanceEmail, "finance-email", c.FinanceEmail, "Finance mailbox for withdrawal notifications")

	return fs.Parse(args)
}
