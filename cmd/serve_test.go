package cmd

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wot-oss/fwreg/internal/config"
)

func buildFwregEnvVar(name string) string {
	return strings.ToUpper(config.EnvPrefix + "_" + name)
}

func TestGetCORSOptionsReadsFromEnvironment(t *testing.T) {
	setupConfigDir(t)

	t.Run("with set environment variables", func(t *testing.T) {
		t.Setenv(buildFwregEnvVar(config.KeyCorsAllowedHeaders), "X-Api-Key, X-Bar")
		t.Setenv(buildFwregEnvVar(config.KeyCorsAllowedOrigins), "http://example.org, https://sample.com")
		t.Setenv(buildFwregEnvVar(config.KeyCorsAllowCredentials), "true")
		t.Setenv(buildFwregEnvVar(config.KeyCorsMaxAge), "120")
		config.InitViper()

		opts := getCORSOptions()

		corsOrigins := fmt.Sprintf("%v", reflect.ValueOf(opts).FieldByName("allowedOrigins"))
		corsHeaders := fmt.Sprintf("%v", reflect.ValueOf(opts).FieldByName("allowedHeaders"))
		corsCredentials := fmt.Sprintf("%v", reflect.ValueOf(opts).FieldByName("allowCredentials"))
		corsMaxAge := fmt.Sprintf("%v", reflect.ValueOf(opts).FieldByName("maxAge"))

		assert.Equal(t, "[http://example.org https://sample.com]", corsOrigins)
		assert.Equal(t, "[X-Api-Key X-Bar]", corsHeaders)
		assert.Equal(t, "true", corsCredentials)
		assert.Equal(t, "120", corsMaxAge)
	})

	t.Run("without set environment variables", func(t *testing.T) {
		config.InitViper()

		opts := getCORSOptions()

		corsOrigins := fmt.Sprintf("%v", reflect.ValueOf(opts).FieldByName("allowedOrigins"))
		corsHeaders := fmt.Sprintf("%v", reflect.ValueOf(opts).FieldByName("allowedHeaders"))
		corsCredentials := fmt.Sprintf("%v", reflect.ValueOf(opts).FieldByName("allowCredentials"))
		corsMaxAge := fmt.Sprintf("%v", reflect.ValueOf(opts).FieldByName("maxAge"))

		assert.Equal(t, "[]", corsOrigins)
		assert.Equal(t, "[]", corsHeaders)
		assert.Equal(t, "false", corsCredentials)
		assert.Equal(t, "0", corsMaxAge)
	})
}
