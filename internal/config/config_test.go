package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var keys = []string{
	"APP_PORT", "LOG_LEVEL", "STORE_DRIVER", "DATABASE_DSN",
	"MONGODB_URI", "MONGODB_DB_NAME", "MONGODB_TRANSACTIONS",
	"AUTH_JWT_SECRET", "AUTH_TOKEN_TTL",
	"WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "META_VERIFY_TOKEN", "WHATSAPP_BASE_URL", "WHATSAPP_API_VERSION",
	"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID",
	"DIGEST_CRON_SCHEDULE", "EXPORT_CRON_SCHEDULE", "TIMEZONE", "METRICS_ENABLED",
}

// clearEnv blanks every key so the host environment does not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_JWT_SECRET", "s3cret")

	cfg, err := Load(missingFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Store.Driver != DriverSQLite || cfg.Store.DSN != "herdbook.db" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 168*time.Hour || !cfg.MongoDB.Transactions || !cfg.Metrics.Enabled {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.WhatsApp.Enabled() || cfg.Sheets.Enabled() {
		t.Errorf("optional integrations enabled by default: %+v", cfg)
	}
	if cfg.Scheduler.DigestSchedule != "0 6 * * *" || cfg.Scheduler.Timezone != "UTC" {
		t.Errorf("scheduler = %+v", cfg.Scheduler)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	for _, k := range keys {
		os.Unsetenv(k)
	}
	path := filepath.Join(t.TempDir(), "test.env")
	content := "AUTH_JWT_SECRET=from-file\nSTORE_DRIVER=MongoDB\nMONGODB_URI=mongodb://localhost:27017\nMONGODB_TRANSACTIONS=false\nAUTH_TOKEN_TTL=2h\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		for _, k := range keys {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-file" || cfg.Store.Driver != DriverMongoDB || cfg.MongoDB.Transactions {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("ttl = %v", cfg.Auth.TokenTTL)
	}
}

func TestLoad_Rejections(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "AUTH_JWT_SECRET"},
		{"unknown driver", map[string]string{"STORE_DRIVER": "oracle"}, "STORE_DRIVER"},
		{"mongo without uri", map[string]string{"STORE_DRIVER": "mongodb"}, "MONGODB_URI"},
		{"bad bool", map[string]string{"METRICS_ENABLED": "maybe"}, "METRICS_ENABLED"},
		{"bad ttl", map[string]string{"AUTH_TOKEN_TTL": "a week"}, "AUTH_TOKEN_TTL"},
		{"whatsapp without verify token", map[string]string{"WHATSAPP_TOKEN": "t", "WHATSAPP_PHONE_NUMBER_ID": "1"}, "META_VERIFY_TOKEN"},
		{"half sheets", map[string]string{"GOOGLE_SHEET_DATABASE_ID": "sheet"}, "GOOGLE_SHEETS_CREDENTIALS_PATH"},
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}, "TIMEZONE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.want != "AUTH_JWT_SECRET" {
				t.Setenv("AUTH_JWT_SECRET", "s3cret")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(missingFile(t))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestLoadStore_SkipsServerSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("WHATSAPP_TOKEN", "t")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "1")

	cfg, err := LoadStore(missingFile(t))
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("driver = %q", cfg.Store.Driver)
	}

	t.Setenv("STORE_DRIVER", "mongodb")
	if _, err := LoadStore(missingFile(t)); err == nil || !strings.Contains(err.Error(), "MONGODB_URI") {
		t.Errorf("err = %v, want MONGODB_URI", err)
	}
}
