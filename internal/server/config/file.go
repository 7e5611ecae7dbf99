package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/securedoc/internal/flagx"
	"github.com/dmitrijs2005/securedoc/internal/timex"
)

// FileConfig is the on-disk representation of Config. Keys absent from the
// file leave the corresponding Config field untouched.
type FileConfig struct {
	EndpointAddrGRPC             *string         `json:"endpoint_addr_grpc" toml:"endpoint_addr_grpc"`
	EndpointAddrHTTP             *string         `json:"endpoint_addr_http" toml:"endpoint_addr_http"`
	DatabaseDSN                  *string         `json:"database_dsn" toml:"database_dsn"`
	SecretKey                    *string         `json:"secret_key" toml:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration" toml:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration" toml:"refresh_token_validity_duration"`
	BlobBackend                  *string         `json:"blob_backend" toml:"blob_backend"`
	S3RootUser                   *string         `json:"s3_root_user" toml:"s3_root_user"`
	S3RootPassword               *string         `json:"s3_root_password" toml:"s3_root_password"`
	S3Bucket                     *string         `json:"s3_bucket" toml:"s3_bucket"`
	S3Region                     *string         `json:"s3_region" toml:"s3_region"`
	S3BaseEndpoint               *string         `json:"s3_base_endpoint" toml:"s3_base_endpoint"`
	S3PublicEndpoint             *string         `json:"s3_public_endpoint" toml:"s3_public_endpoint"`
	BlobTimeout                  *timex.Duration `json:"blob_timeout" toml:"blob_timeout"`
	UploadURLValidity            *timex.Duration `json:"upload_url_validity" toml:"upload_url_validity"`
	DownloadURLValidity          *timex.Duration `json:"download_url_validity" toml:"download_url_validity"`
	DirectoryCacheTTL            *timex.Duration `json:"directory_cache_ttl" toml:"directory_cache_ttl"`
	LogLevel                     *string         `json:"log_level" toml:"log_level"`
}

// parseFile overlays the file named by -c/-config onto config. It panics if
// the file cannot be read or decoded.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}
	if err := ReadFile(config, path); err != nil {
		panic(err)
	}
}

// ReadFile overlays the JSON or TOML file at path onto config. Files ending
// in .toml are decoded as TOML, everything else as JSON.
func ReadFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	fc := &FileConfig{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), fc); err != nil {
			return fmt.Errorf("decoding %s: %w", path, err)
		}
	} else if err := json.Unmarshal(data, fc); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.SecretKey, fc.SecretKey)
	setDuration(&c.AccessTokenValidityDuration, fc.AccessTokenValidityDuration)
	setDuration(&c.RefreshTokenValidityDuration, fc.RefreshTokenValidityDuration)
	setString(&c.BlobBackend, fc.BlobBackend)
	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&c.S3PublicEndpoint, fc.S3PublicEndpoint)
	setDuration(&c.BlobTimeout, fc.BlobTimeout)
	setDuration(&c.UploadURLValidity, fc.UploadURLValidity)
	setDuration(&c.DownloadURLValidity, fc.DownloadURLValidity)
	setDuration(&c.DirectoryCacheTTL, fc.DirectoryCacheTTL)
	setString(&c.LogLevel, fc.LogLevel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
