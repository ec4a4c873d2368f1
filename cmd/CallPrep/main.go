package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/BTreeMap/CallPrep/internal/api"
	"github.com/BTreeMap/CallPrep/internal/genai"
	"github.com/BTreeMap/CallPrep/internal/identity"
	"github.com/BTreeMap/CallPrep/internal/lookup"
	"github.com/BTreeMap/CallPrep/internal/util"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Build module options
	validatorOpts := buildValidatorOptions(flags)
	lookupOpts := buildLookupOptions(flags)
	genaiOpts := buildGenAIOptions(flags)
	apiOpts := buildAPIOptions(flags)

	slog.Info("Bootstrapping CallPrep with configured modules")
	slog.Debug("Module options counts", "validator", len(validatorOpts), "lookup", len(lookupOpts), "genai", len(genaiOpts), "api", len(apiOpts))

	lookupClient, err := lookup.NewClient(lookupOpts...)
	if err != nil {
		slog.Error("Failed to create lookup client", "error", err)
		os.Exit(1)
	}
	apiOpts = append(apiOpts,
		api.WithValidator(identity.New(validatorOpts...)),
		api.WithLookupClient(lookupClient),
	)

	// GenAI is optional: without a key the service serves snapshots only.
	if *flags.openaiKey != "" {
		genaiClient, err := genai.NewClient(genaiOpts...)
		if err != nil {
			slog.Error("Failed to create GenAI client", "error", err)
			os.Exit(1)
		}
		apiOpts = append(apiOpts, api.WithGenAIClient(genaiClient))
	} else {
		slog.Warn("No OpenAI API key configured, summary generation disabled")
	}

	server, err := api.NewServer(apiOpts...)
	if err != nil {
		slog.Error("Failed to create API server", "error", err)
		os.Exit(1)
	}
	if err := server.Run(); err != nil {
		slog.Error("CallPrep failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("CallPrep exited successfully")
}

// Config holds environment configuration
type Config struct {
	LookupBaseURL string
	LookupAPIKey  string
	OpenAIKey     string
	Model         string
	APIAddr       string
	MinBirthYear  int
	EnforceFloor  bool
}

// Flags holds command line flag values
type Flags struct {
	lookupBaseURL *string
	lookupAPIKey  *string
	lookupTimeout *time.Duration
	openaiKey     *string
	model         *string
	apiAddr       *string
	minBirthYear  *int
	enforceFloor  *bool
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		LookupBaseURL: os.Getenv("CALLPREP_API_BASE_URL"),
		LookupAPIKey:  os.Getenv("CALLPREP_API_KEY"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		Model:         os.Getenv("CALLPREP_MODEL"),
		APIAddr:       os.Getenv("API_ADDR"),
		MinBirthYear:  util.ParseIntEnv("CALLPREP_MIN_BIRTH_YEAR", identity.DefaultMinBirthYear),
		EnforceFloor:  util.ParseBoolEnv("CALLPREP_ENFORCE_MIN_BIRTH_YEAR", false),
	}

	slog.Debug("environment variables loaded",
		"CALLPREP_API_BASE_URL_SET", config.LookupBaseURL != "",
		"CALLPREP_API_KEY_SET", config.LookupAPIKey != "",
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"CALLPREP_MODEL", config.Model,
		"API_ADDR", config.APIAddr,
		"CALLPREP_MIN_BIRTH_YEAR", config.MinBirthYear,
		"CALLPREP_ENFORCE_MIN_BIRTH_YEAR", config.EnforceFloor)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		lookupBaseURL: flag.String("lookup-base-url", config.LookupBaseURL, "healthcare aggregator base URL (overrides $CALLPREP_API_BASE_URL)"),
		lookupAPIKey:  flag.String("lookup-api-key", config.LookupAPIKey, "healthcare aggregator API key (overrides $CALLPREP_API_KEY)"),
		lookupTimeout: flag.Duration("lookup-timeout", lookup.DefaultTimeout, "per-request aggregator timeout"),
		openaiKey:     flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		model:         flag.String("model", config.Model, "OpenAI chat model for summaries (overrides $CALLPREP_MODEL)"),
		apiAddr:       flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		minBirthYear:  flag.Int("min-birth-year", config.MinBirthYear, "earliest accepted birth year (overrides $CALLPREP_MIN_BIRTH_YEAR)"),
		enforceFloor:  flag.Bool("enforce-min-birth-year", config.EnforceFloor, "reject birth dates before the minimum year (overrides $CALLPREP_ENFORCE_MIN_BIRTH_YEAR)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"lookupBaseURL_set", *flags.lookupBaseURL != "",
		"lookupAPIKey_set", *flags.lookupAPIKey != "",
		"lookupTimeout", *flags.lookupTimeout,
		"openaiKeySet", *flags.openaiKey != "",
		"model", *flags.model,
		"apiAddr", *flags.apiAddr,
		"minBirthYear", *flags.minBirthYear,
		"enforceFloor", *flags.enforceFloor)

	return flags
}

// buildValidatorOptions constructs identity validator configuration options
func buildValidatorOptions(flags Flags) []identity.Option {
	var opts []identity.Option
	if *flags.enforceFloor {
		opts = append(opts, identity.WithMinYear(*flags.minBirthYear))
	}
	return opts
}

// buildLookupOptions constructs lookup client configuration options
func buildLookupOptions(flags Flags) []lookup.Option {
	var opts []lookup.Option
	if *flags.lookupBaseURL != "" {
		opts = append(opts, lookup.WithBaseURL(*flags.lookupBaseURL))
	}
	if *flags.lookupAPIKey != "" {
		opts = append(opts, lookup.WithAPIKey(*flags.lookupAPIKey))
	}
	if *flags.lookupTimeout > 0 {
		opts = append(opts, lookup.WithTimeout(*flags.lookupTimeout))
	}
	return opts
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var opts []genai.Option
	if *flags.openaiKey != "" {
		opts = append(opts, genai.WithAPIKey(*flags.openaiKey))
	}
	if *flags.model != "" {
		opts = append(opts, genai.WithModel(*flags.model))
	}
	return opts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var opts []api.Option
	if *flags.apiAddr != "" {
		opts = append(opts, api.WithAddr(*flags.apiAddr))
	}
	return opts
}
