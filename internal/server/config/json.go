package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/foodgram/internal/flagx"
	"github.com/dmitrijs2005/foodgram/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Every field is
// optional: zero values leave the corresponding Config field untouched, so a
// file only needs to list what it overrides.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	ShortLinkSalt               string         `json:"short_link_salt"`
	ShortLinkMinLength          int            `json:"short_link_min_length"`
	PublicBaseURL               string         `json:"public_base_url"`
	FallbackURL                 string         `json:"fallback_url"`
	LogFormat                   string         `json:"log_format"`
	DefaultPageSize             int            `json:"default_page_size"`
	MaxPageSize                 int            `json:"max_page_size"`
}

// parseJson overlays values from the JSON file named by -c/-config (or
// $FOODGRAM_CONFIG) onto config. No file means no changes. An unreadable
// file or invalid JSON panics: the server must not start half-configured.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.ShortLinkSalt, c.ShortLinkSalt)
	setInt(&config.ShortLinkMinLength, c.ShortLinkMinLength)
	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.FallbackURL, c.FallbackURL)
	setString(&config.LogFormat, c.LogFormat)
	setInt(&config.DefaultPageSize, c.DefaultPageSize)
	setInt(&config.MaxPageSize, c.MaxPageSize)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}
