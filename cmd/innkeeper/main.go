// Command innkeeper runs the hotel WhatsApp concierge service.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/karthik-pvr/innkeeper/internal/api"
	"github.com/karthik-pvr/innkeeper/internal/genai"
	"github.com/karthik-pvr/innkeeper/internal/messaging"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	msgOpts := buildMessagingOptions(flags)
	genaiOpts := buildGenAIOptions(flags)
	apiOpts := buildAPIOptions(flags)

	slog.Info("Bootstrapping innkeeper with configured modules")
	slog.Debug("Module options counts", "messaging", len(msgOpts), "genai", len(genaiOpts), "api", len(apiOpts))
	if err := api.Run(msgOpts, genaiOpts, apiOpts); err != nil {
		slog.Error("innkeeper failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("innkeeper exited successfully")
}

// Config holds environment configuration
type Config struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	OpenAIKey     string
	OpenAIModel   string
	APIAddr       string
	LogLevel      string
}

// Flags holds command line flag values
type Flags struct {
	accessToken   *string
	phoneNumberID *string
	verifyToken   *string
	openaiKey     *string
	openaiModel   *string
	apiAddr       *string
}

// initializeLogger sets up structured logging, honoring $LOG_LEVEL
func initializeLogger() {
	level := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
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
		AccessToken:   os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		VerifyToken:   os.Getenv("WHATSAPP_VERIFY_TOKEN"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),
		APIAddr:       os.Getenv("API_ADDR"),
	}

	slog.Debug("environment variables loaded",
		"WHATSAPP_ACCESS_TOKEN_SET", config.AccessToken != "",
		"WHATSAPP_PHONE_NUMBER_ID_SET", config.PhoneNumberID != "",
		"WHATSAPP_VERIFY_TOKEN_SET", config.VerifyToken != "",
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"OPENAI_MODEL", config.OpenAIModel,
		"API_ADDR", config.APIAddr)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		accessToken:   flag.String("access-token", config.AccessToken, "WhatsApp Cloud API access token (overrides $WHATSAPP_ACCESS_TOKEN)"),
		phoneNumberID: flag.String("phone-number-id", config.PhoneNumberID, "WhatsApp Cloud API phone number ID (overrides $WHATSAPP_PHONE_NUMBER_ID)"),
		verifyToken:   flag.String("verify-token", config.VerifyToken, "webhook verification token (overrides $WHATSAPP_VERIFY_TOKEN)"),
		openaiKey:     flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		openaiModel:   flag.String("openai-model", config.OpenAIModel, "OpenAI model name (overrides $OPENAI_MODEL)"),
		apiAddr:       flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"accessTokenSet", *flags.accessToken != "",
		"phoneNumberID", *flags.phoneNumberID,
		"verifyTokenSet", *flags.verifyToken != "",
		"openaiKeySet", *flags.openaiKey != "",
		"openaiModel", *flags.openaiModel,
		"apiAddr", *flags.apiAddr)

	return flags
}

// buildMessagingOptions constructs WhatsApp Cloud API configuration options
func buildMessagingOptions(flags Flags) []messaging.Option {
	var msgOpts []messaging.Option
	if *flags.accessToken != "" {
		msgOpts = append(msgOpts, messaging.WithAccessToken(*flags.accessToken))
	}
	if *flags.phoneNumberID != "" {
		msgOpts = append(msgOpts, messaging.WithPhoneNumberID(*flags.phoneNumberID))
	}
	return msgOpts
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	if *flags.openaiModel != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.openaiModel))
	}
	return genaiOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.verifyToken != "" {
		apiOpts = append(apiOpts, api.WithVerifyToken(*flags.verifyToken))
	}
	return apiOpts
}
