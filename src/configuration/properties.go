package configuration

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type (
	Properties struct {
		LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

		Server      HttpServerProperties  `envPrefix:"HTTP_"`
		MetadataAPI MetadataAPIProperties `envPrefix:"META_"`
		S3          S3Properties          `envPrefix:"S3_"`
		Viewer      ViewerProperties      `envPrefix:"VIEWER_"`
	}

	HttpServerProperties struct {
		Name         string        `env:"NAME" envDefault:"c2paview"`
		Port         string        `env:"PORT" envDefault:"8088"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
		AllowOrigins []string      `env:"ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
		Pprof        bool          `env:"PPROF" envDefault:"false"`
		MaxUpload    int64         `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"`
	}

	// MetadataAPIProperties points at the external service that extracts
	// EXIF/IPTC/C2PA data from images.
	MetadataAPIProperties struct {
		Host           string        `env:"HOST" envDefault:"http://localhost:8080"`
		Timeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
		MetadataPath   string        `env:"METADATA_PATH" envDefault:"/api/metadata"`
		ExifPath       string        `env:"EXIF_PATH" envDefault:"/api/exif_metadata"`
		C2PAPath       string        `env:"C2PA_PATH" envDefault:"/api/c2pa_metadata"`
		ThumbnailsPath string        `env:"THUMBNAILS_PATH" envDefault:"/api/extract_thumbnails"`
		UploadPath     string        `env:"UPLOAD_PATH" envDefault:"/api/upload"`
	}

	S3Properties struct {
		Enabled   bool   `env:"ENABLED" envDefault:"false"`
		Host      string `env:"HOST" envDefault:"localhost:9000"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		Bucket    string `env:"BUCKET" envDefault:"c2paview"`
		Prefix    string `env:"PREFIX" envDefault:"uploads"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"true"`
	}

	ViewerProperties struct {
		PublicURL      string        `env:"PUBLIC_URL" envDefault:"http://localhost:8088/"`
		MapSearchURL   string        `env:"MAP_SEARCH_URL" envDefault:"https://www.google.com/maps/search/?api=1&query="`
		CredentialsTTL time.Duration `env:"CREDENTIALS_TTL" envDefault:"5m"`
	}
)

// ParseProperties reads the configuration from the environment.
func ParseProperties() (*Properties, error) {
	config := &Properties{}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("read config error: %w", err)
	}
	return config, nil
}
