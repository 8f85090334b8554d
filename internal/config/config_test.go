package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"physiobill/pkg/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorageDriver != "sqlite" || cfg.SQLitePath != "physiobill.db" {
		t.Fatalf("unexpected storage defaults %+v", cfg)
	}
	if cfg.DocumentsDriver != "fs" || cfg.ClinicFile != "clinic.yaml" {
		t.Fatalf("unexpected documents defaults %+v", cfg)
	}
	if cfg.IsDev() {
		t.Fatalf("default env should not be development")
	}
	st := cfg.Storage()
	if st.Driver != domain.StorageSQLite || st.FSRoot != "./physiobill-data" {
		t.Fatalf("unexpected storage settings %+v", st)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PHYSIOBILL_ENV", "development")
	t.Setenv("PHYSIOBILL_STORAGE_DRIVER", "FS")
	t.Setenv("PHYSIOBILL_DATA_DIR", "/tmp/clinic")
	t.Setenv("PHYSIOBILL_DOCUMENTS_DRIVER", "s3")
	t.Setenv("PHYSIOBILL_S3_BUCKET", "invoices")
	t.Setenv("PHYSIOBILL_S3_PATH_STYLE", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected development env")
	}
	if st := cfg.Storage(); st.Driver != domain.StorageFS || st.FSRoot != "/tmp/clinic" {
		t.Fatalf("unexpected storage %+v", st)
	}
	docs := cfg.Documents()
	if docs.Driver != "s3" || docs.S3Bucket != "invoices" || !docs.S3PathStyle || docs.S3Region != "us-east-1" {
		t.Fatalf("unexpected documents %+v", docs)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clinic.env")
	if err := os.WriteFile(path, []byte("PHYSIOBILL_STORAGE_DRIVER=memory\nPHYSIOBILL_LOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Unsetenv("PHYSIOBILL_STORAGE_DRIVER")
		_ = os.Unsetenv("PHYSIOBILL_LOG_LEVEL")
	})
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorageDriver != "memory" || cfg.LogLevel != "debug" {
		t.Fatalf("env file values not applied: %+v", cfg)
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error for missing explicit env file")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "unknown storage", cfg: Config{StorageDriver: "redis", DocumentsDriver: "fs"}, want: "unknown storage driver"},
		{name: "postgres without dsn", cfg: Config{StorageDriver: "postgres", DocumentsDriver: "fs"}, want: "POSTGRES_DSN"},
		{name: "s3 without bucket", cfg: Config{StorageDriver: "memory", DocumentsDriver: "s3"}, want: "S3_BUCKET"},
		{name: "unknown documents", cfg: Config{StorageDriver: "memory", DocumentsDriver: "ftp"}, want: "unknown documents driver"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q error, got %v", tc.want, err)
			}
		})
	}
	ok := Config{StorageDriver: "postgres", PostgresDSN: "postgres://x", DocumentsDriver: "memory"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoadClinicDefaultsWhenMissing(t *testing.T) {
	info, err := LoadClinic(filepath.Join(t.TempDir(), "clinic.yaml"))
	if err != nil {
		t.Fatalf("LoadClinic: %v", err)
	}
	if info != domain.DefaultClinicInfo() {
		t.Fatalf("expected defaults, got %+v", info)
	}
}

func TestClinicRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clinic.yaml")
	want := domain.ClinicInfo{Name: "Active Rehab", Address: "4 Park Lane", Phone: "+91 1", Consultant: "Dr. Rao", Department: "Sports"}
	if err := SaveClinic(path, want); err != nil {
		t.Fatalf("SaveClinic: %v", err)
	}
	got, err := LoadClinic(path)
	if err != nil {
		t.Fatalf("LoadClinic: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, want)
	}
}

func TestLoadClinicPartialAndInvalid(t *testing.T) {
	dir := t.TempDir()
	partial := filepath.Join(dir, "partial.yaml")
	if err := os.WriteFile(partial, []byte("name: Spine Care\nconsultant: Dr. Iyer\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	info, err := LoadClinic(partial)
	if err != nil {
		t.Fatalf("LoadClinic: %v", err)
	}
	if info.Name != "Spine Care" || info.Consultant != "Dr. Iyer" || info.Phone != domain.DefaultClinicInfo().Phone {
		t.Fatalf("unexpected merged profile %+v", info)
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("name: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadClinic(bad); err == nil {
		t.Fatalf("expected parse error")
	}
}
