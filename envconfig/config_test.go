package envconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitEnvConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	InitEnvConfig()

	assert.Equal(t, "3000", EnvConfig.Port)
	assert.Nil(t, EnvConfig.AllowedOrigins)
}

func TestInitEnvConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	InitEnvConfig()

	assert.Equal(t, "8081", EnvConfig.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, EnvConfig.AllowedOrigins)
}
