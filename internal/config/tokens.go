package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// TokenConfig is one configured API token as it appears in the tokens file.
type TokenConfig struct {
	Token     string     `mapstructure:"token"`
	UserID    string     `mapstructure:"user_id"`
	UserName  string     `mapstructure:"user_name"`
	Role      string     `mapstructure:"role"`
	ExpiresAt *time.Time `mapstructure:"-"`
	// RFC 3339; empty means the token never expires.
	RawExpiresAt string `mapstructure:"expires_at"`
}

// LoadTokens reads token records from a YAML or JSON file under the "tokens" key.
func LoadTokens(path string) ([]TokenConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var tokens []TokenConfig
	if err := v.UnmarshalKey("tokens", &tokens); err != nil {
		return nil, fmt.Errorf("decode tokens: %w", err)
	}

	for i := range tokens {
		if tokens[i].Role == "" {
			tokens[i].Role = "User"
		}
		if tokens[i].RawExpiresAt == "" {
			continue
		}
		exp, err := time.Parse(time.RFC3339, tokens[i].RawExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("token %d: invalid expires_at: %w", i, err)
		}
		exp = exp.UTC()
		tokens[i].ExpiresAt = &exp
	}
	return tokens, nil
}

// DevelopmentTokens is the token set used when no tokens file is configured.
func DevelopmentTokens() []TokenConfig {
	expired := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return []TokenConfig{
		{Token: "dev-token-12345", UserID: "1", UserName: "developer", Role: "Admin"},
		{Token: "test-token-67890", UserID: "2", UserName: "tester", Role: "User"},
		{Token: "expired-token-00000", UserID: "3", UserName: "former", Role: "User", ExpiresAt: &expired},
	}
}
