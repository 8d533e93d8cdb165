package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/recruitdesk/internal/recruit"
)

const (
	app       = "recruitdesk"
	envPrefix = "RECRUITDESK"
)

type Config struct {
	API     *APIConfig     `mapstructure:"api" validate:"required"`
	Session *SessionConfig `mapstructure:"session"`
	Metrics *MetricsConfig `mapstructure:"metrics"`
	AI      *AIConfig      `mapstructure:"ai"`
}

type APIConfig struct {
	BaseURL   string        `mapstructure:"base-url" validate:"required,url"`
	Token     string        `mapstructure:"token"`
	TokenFile string        `mapstructure:"token-file"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
	UserAgent string        `mapstructure:"user-agent"`
	Paths     recruit.Paths `mapstructure:"paths"`
}

type SessionConfig struct {
	// Store is the SQLite file the browse session is saved to. Empty keeps it in memory.
	Store string `mapstructure:"store"`
}

type MetricsConfig struct {
	Addr      string    `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Namespace string    `mapstructure:"namespace"`
	Buckets   []float64 `mapstructure:"buckets" validate:"omitempty,dive,gt=0"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "recruitdesk is a cli for browsing clients, requirements and résumés of the recruitment backend and managing résumé statuses",
	}
)

// Execute executes the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is recruitdesk.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("api-url", "", "base url of the recruitment backend")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("api.base-url", rootCmd.PersistentFlags().Lookup("api-url"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	paths := recruit.DefaultPaths()

	v.SetDefault("api.base-url", "http://localhost:8000")
	v.SetDefault("api.token", "")
	v.SetDefault("api.token-file", "")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.user-agent", "")
	v.SetDefault("api.paths.clients", paths.Clients)
	v.SetDefault("api.paths.requirements", paths.Requirements)
	v.SetDefault("api.paths.requirements-query", paths.RequirementsQuery)
	v.SetDefault("api.paths.resumes", paths.Resumes)
	v.SetDefault("api.paths.resumes-query", paths.ResumesQuery)
	v.SetDefault("api.paths.statuses", paths.Statuses)
	v.SetDefault("api.paths.status-update", paths.StatusUpdate)
	v.SetDefault("api.paths.status-update-query", paths.StatusUpdateQuery)
	v.SetDefault("api.paths.summary", paths.Summary)
	v.SetDefault("api.paths.resume-download", paths.ResumeDownload)
	v.SetDefault("api.paths.requirement-download", paths.RequirementDownload)
	v.SetDefault("api.paths.resume-upload", paths.ResumeUpload)
	v.SetDefault("api.paths.requirement-upload", paths.RequirementUpload)
	v.SetDefault("session.store", app+"-session.db")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.namespace", app)
	v.SetDefault("metrics.buckets", []float64{})
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "")
	v.SetDefault("ai.gemini.max-log-length", 200)
}

func initConfig() {
	// Variables from .env never override the real environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %s", err)
	}

	if err := readConfig(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// readConfig wires env overrides and reads the config file. Only an explicitly given
// file has to exist.
func readConfig(v *viper.Viper, file string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	return nil
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		return nil, errors.New("config is required")
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	config.API.Paths = config.API.Paths.Merge(recruit.DefaultPaths())

	return config, nil
}
