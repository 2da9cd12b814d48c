package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	addrEnv          = "VAULT_ADDR"
	tokenEnv         = "VAULT_TOKEN"
	defaultTokenFile = ".vault-token"
	defaultRootPath  = "secret"
)

// Config is the resolved startup configuration.
type Config struct {
	// Addr is the server address, e.g. "https://vault.example.com:8200".
	Addr string
	// Token is the auth token presented on every request.
	Token string
	// TokenFile is the file the token was read from, "" if it came from the
	// environment or a flag. A non-empty value is watched for rotation.
	TokenFile string
	// RootPath is the initial path the browser opens at.
	RootPath string
}

// Resolve builds the configuration from flag values and the environment.
// Flags win over environment variables, which win over defaults. The token
// is looked up as: --token flag, VAULT_TOKEN, then the token file
// (--token-file or ~/.vault-token).
func Resolve(addrFlag, tokenFlag, tokenFileFlag, pathFlag string) (Config, error) {
	cfg := Config{}

	cfg.Addr = addrFlag
	if cfg.Addr == "" {
		cfg.Addr = os.Getenv(addrEnv)
	}
	if cfg.Addr == "" {
		return Config{}, fmt.Errorf("no server address: pass --addr or set %s", addrEnv)
	}

	switch {
	case tokenFlag != "":
		cfg.Token = tokenFlag
	case os.Getenv(tokenEnv) != "":
		cfg.Token = os.Getenv(tokenEnv)
	default:
		file := tokenFileFlag
		if file == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return Config{}, fmt.Errorf("no token: %w", err)
			}
			file = filepath.Join(home, defaultTokenFile)
		}
		token, err := ReadTokenFile(file)
		if err != nil {
			return Config{}, err
		}
		cfg.Token = token
		cfg.TokenFile = file
	}

	// The navigation root is always the flag or the default. The last
	// visited path from persisted state only moves the cursor (the app
	// restores it on startup); promoting it to the root would trap the
	// next session below wherever the previous one ended up.
	cfg.RootPath = pathFlag
	if cfg.RootPath == "" {
		cfg.RootPath = defaultRootPath
	}

	return cfg, nil
}

// ReadTokenFile reads and trims a token file.
func ReadTokenFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", path)
	}
	return token, nil
}
