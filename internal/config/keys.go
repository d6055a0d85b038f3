package config

import "os"

// SecretSource represents where a secret comes from.
type SecretSource string

const (
	SourceEnv    SecretSource = "env"
	SourceConfig SecretSource = "config"
	SourceNone   SecretSource = "none"
)

// SecretStatus represents the status of a secret setting.
type SecretStatus struct {
	Name   string       `json:"name"`
	Source SecretSource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "sk-...abc"
}

// CheckSecrets returns the status of every secret setting.
func CheckSecrets(cfg *Config) []SecretStatus {
	return []SecretStatus{
		checkSecret("OpenAI API Key", cfg.Narrative.OpenAIKey, "EDGARWATCH_NARRATIVE_OPENAI_KEY"),
		checkSecret("Webhook URL", cfg.Webhook.URL, "EDGARWATCH_WEBHOOK_URL"),
	}
}

// checkSecret checks if a secret is set and where it came from.
func checkSecret(name, value, envVar string) SecretStatus {
	status := SecretStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value != "" {
		if os.Getenv(envVar) != "" {
			status.Source = SourceEnv
		} else {
			status.Source = SourceConfig
		}
		status.Masked = mask(value)
	} else {
		status.Source = SourceNone
	}

	return status
}

// mask hides a secret for display, showing only first 3 and last 3 chars.
func mask(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:3] + "..." + s[len(s)-3:]
}
