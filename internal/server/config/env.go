package config

import (
	"os"
	"time"
)

// parseEnv overlays Config fields from environment variables. Only variables
// that are set override the current value, so defaults survive an empty
// environment.
//
// Recognized variables:
//
//	ADDRESS           HTTP bind address (e.g. ":8080")
//	GALLERY_PASSWORD  shared login secret
//	SESSION_SECRET    JWT HMAC signing key
//	TOKEN_VALIDITY    token lifetime, Go duration string (e.g. "720h")
//	STORAGE_BACKEND   "s3", "postgres" or "memory"
//	S3_ROOT_USER      S3 access key
//	S3_ROOT_PASSWORD  S3 secret key
//	S3_BUCKET         S3 bucket name
//	S3_REGION         S3 region
//	S3_BASE_ENDPOINT  S3 base endpoint (e.g. "http://127.0.0.1:9000/")
//	S3_PREFIX         collection directory prefix inside the bucket
//	DATABASE_DSN      PostgreSQL DSN
func parseEnv(config *Config) {

	setString := func(dst *string, name string) {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	setString(&config.EndpointAddr, "ADDRESS")
	setString(&config.Password, "GALLERY_PASSWORD")
	setString(&config.SecretKey, "SESSION_SECRET")
	setString(&config.StorageBackend, "STORAGE_BACKEND")
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	setString(&config.S3Prefix, "S3_PREFIX")
	setString(&config.DatabaseDSN, "DATABASE_DSN")

	if v, ok := os.LookupEnv("TOKEN_VALIDITY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.TokenValidityDuration = d
		}
	}
}
