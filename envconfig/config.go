package envconfig

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables understood by the relay
type envConfig struct {
	AllowedOrigins []string
	Port           string
}

var EnvConfig *envConfig

// Listen port used when PORT is unset
const defaultPort = "3000"

// InitEnvConfig loads .env when present and populates EnvConfig.
// Every variable has a usable default, so initialization never fails.
func InitEnvConfig() {
	// A missing .env file is fine; deployments usually set the environment directly
	godotenv.Load()

	EnvConfig = &envConfig{
		AllowedOrigins: getEnvArray("ALLOWED_ORIGINS"),
		Port:           getEnv("PORT", defaultPort),
	}
}

// Returns a single environment variable, or the fallback when unset
func getEnv(envName, fallback string) string {
	if env := os.Getenv(envName); env != "" {
		return env
	}
	return fallback
}

// Returns an environment variable array, nil when unset
func getEnvArray(envName string) []string {
	envStr := os.Getenv(envName)

	if envStr == "" {
		return nil
	}

	return strings.Split(envStr, ",")
}
