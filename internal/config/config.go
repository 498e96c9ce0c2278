package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string
	UploadDir   string
	CORSOrigins []string
	LogLevel    string
	LogFormat   string
	ImportPath  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	OrphanListKey string
}

const (
	KeyHTTPAddr      = "http_addr"
	KeyDatabaseURL   = "database_url"
	KeyUploadDir     = "upload_dir"
	KeyCORSOrigins   = "cors_origins"
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
	KeyImportPath    = "import_path"
	KeyRedisAddr     = "redis_addr"
	KeyRedisPassword = "redis_password"
	KeyRedisDB       = "redis_db"
	KeyOrphanListKey = "orphan_list_key"
)

// NewViper returns a viper instance with defaults applied and environment
// variables bound (DATABASE_URL, UPLOAD_DIR, ...). An optional
// certmanager.yaml in the working directory or /etc/certmanager is read too.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyHTTPAddr, ":8000")
	v.SetDefault(KeyDatabaseURL, "sqlite:///./app.db")
	v.SetDefault(KeyUploadDir, "/data/uploads")
	v.SetDefault(KeyCORSOrigins, "http://localhost:5173")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyImportPath, "/data/CMMC L2 SSP.xlsx")
	v.SetDefault(KeyRedisAddr, "")
	v.SetDefault(KeyRedisPassword, "")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyOrphanListKey, "certmanager:evidence:orphans")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("certmanager")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/certmanager")
	return v
}

// Load reads the optional config file into v and resolves the Config.
// A missing config file is not an error.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}
	return fromViper(v), nil
}

func FromEnv() Config {
	return fromViper(NewViper())
}

func fromViper(v *viper.Viper) Config {
	redisDB := v.GetInt(KeyRedisDB)
	if redisDB < 0 {
		redisDB = 0
	}
	return Config{
		HTTPAddr:      envDefault(v, KeyHTTPAddr, ":8000"),
		DatabaseURL:   envDefault(v, KeyDatabaseURL, "sqlite:///./app.db"),
		UploadDir:     envDefault(v, KeyUploadDir, "/data/uploads"),
		CORSOrigins:   splitList(v.GetString(KeyCORSOrigins)),
		LogLevel:      envDefault(v, KeyLogLevel, "info"),
		LogFormat:     envDefault(v, KeyLogFormat, "text"),
		ImportPath:    envDefault(v, KeyImportPath, "/data/CMMC L2 SSP.xlsx"),
		RedisAddr:     strings.TrimSpace(v.GetString(KeyRedisAddr)),
		RedisPassword: v.GetString(KeyRedisPassword),
		RedisDB:       redisDB,
		OrphanListKey: envDefault(v, KeyOrphanListKey, "certmanager:evidence:orphans"),
	}
}

func envDefault(v *viper.Viper, key, def string) string {
	s := strings.TrimSpace(v.GetString(key))
	if s == "" {
		return def
	}
	return s
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
