package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ErrMissingCredentials is returned when a command that talks to the
// inference service starts without an API key.
var ErrMissingCredentials = errors.New("OPENAI_API_KEY is not set; export it or add it to a .env file")

const apiKeyVar = "OPENAI_API_KEY"

// APIKey resolves the OpenAI API key. The process environment wins; a .env
// file in the working directory is the fallback.
func APIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv(apiKeyVar)); key != "" {
		return key, nil
	}

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err == nil {
		if key := strings.TrimSpace(v.GetString(apiKeyVar)); key != "" {
			return key, nil
		}
	}

	return "", ErrMissingCredentials
}

// HasCredentials reports whether an API key is available.
func HasCredentials() bool {
	_, err := APIKey()
	return err == nil
}
