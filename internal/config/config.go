package config

import "fmt"

type Config struct {
	Env                        string
	ServerPort                 int
	DatabaseURL                string
	VoiceAPIKey                string
	VoiceAPIBaseURL            string
	VoiceWSBaseURL             string
	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string
	TranscribeLanguage         string
	ScorerAPIKey               string
	ScorerBaseURL              string
	ScorerModel                string
	HighlightWebhookURL        string
	FFmpegPath                 string
	WorkDir                    string
	MaxSessionDurationMin      int
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("PORT must be a valid port number, got %d", c.ServerPort)
	}
	if c.MaxSessionDurationMin <= 0 {
		return fmt.Errorf("MAX_SESSION_DURATION_MIN must be positive, got %d", c.MaxSessionDurationMin)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "VOICE_API_KEY", value: c.VoiceAPIKey},
		{name: "GOOGLE_CLOUD_PROJECT_ID", value: c.GoogleCloudProjectID},
		{name: "GOOGLE_CLOUD_CREDENTIALS_JSON", value: c.GoogleCloudCredentialsJSON},
		{name: "SCORER_API_KEY", value: c.ScorerAPIKey},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
