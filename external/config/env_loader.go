package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	internalconfig "github.com/pitchperfect/pitchperfect/internal/config"
)

type envConfig struct {
	Env                        string `env:"ENV" envDefault:"production"`
	ServerPort                 int    `env:"PORT" envDefault:"8080"`
	DatabaseURL                string `env:"DATABASE_URL,required"`
	VoiceAPIKey                string `env:"VOICE_API_KEY,required"`
	VoiceAPIBaseURL            string `env:"VOICE_API_BASE_URL" envDefault:"https://api.elevenlabs.io/v1"`
	VoiceWSBaseURL             string `env:"VOICE_WS_BASE_URL" envDefault:"wss://api.elevenlabs.io/v1"`
	GoogleCloudProjectID       string `env:"GOOGLE_CLOUD_PROJECT_ID,required"`
	GoogleCloudCredentialsJSON string `env:"GOOGLE_CLOUD_CREDENTIALS_JSON,required"`
	GoogleCloudSpeechLocation  string `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"global"`
	GoogleCloudSpeechModel     string `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"chirp_3"`
	TranscribeLanguage         string `env:"TRANSCRIBE_LANGUAGE" envDefault:"en-US"`
	ScorerAPIKey               string `env:"SCORER_API_KEY,required"`
	ScorerBaseURL              string `env:"SCORER_BASE_URL" envDefault:"https://api.openai.com/v1"`
	ScorerModel                string `env:"SCORER_MODEL" envDefault:"gpt-4o-2024-08-06"`
	HighlightWebhookURL        string `env:"HIGHLIGHT_WEBHOOK_URL"`
	FFmpegPath                 string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	WorkDir                    string `env:"WORK_DIR"`
	MaxSessionDurationMin      int    `env:"MAX_SESSION_DURATION_MIN" envDefault:"60"`
}

func Load() (*internalconfig.Config, error) {
	// Missing .env is fine outside local development.
	_ = godotenv.Load()

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}
	if raw.WorkDir == "" {
		raw.WorkDir = os.TempDir()
	}

	cfg := &internalconfig.Config{
		Env:                        raw.Env,
		ServerPort:                 raw.ServerPort,
		DatabaseURL:                raw.DatabaseURL,
		VoiceAPIKey:                raw.VoiceAPIKey,
		VoiceAPIBaseURL:            raw.VoiceAPIBaseURL,
		VoiceWSBaseURL:             raw.VoiceWSBaseURL,
		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,
		TranscribeLanguage:         raw.TranscribeLanguage,
		ScorerAPIKey:               raw.ScorerAPIKey,
		ScorerBaseURL:              raw.ScorerBaseURL,
		ScorerModel:                raw.ScorerModel,
		HighlightWebhookURL:        raw.HighlightWebhookURL,
		FFmpegPath:                 raw.FFmpegPath,
		WorkDir:                    raw.WorkDir,
		MaxSessionDurationMin:      raw.MaxSessionDurationMin,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
