package config

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/kbukum/openbatch/batch"
	"github.com/kbukum/openbatch/errors"
	"github.com/kbukum/openbatch/logger"
	"github.com/kbukum/openbatch/observability"
	"github.com/kbukum/openbatch/request"
	"github.com/kbukum/openbatch/verify"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Name != AppName {
		t.Errorf("Name = %q, want %q", cfg.Name, AppName)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Limits != request.DefaultLimits() {
		t.Errorf("Limits = %+v, want %+v", cfg.Limits, request.DefaultLimits())
	}
	if !cfg.Writer.Strict || !cfg.Writer.EnsureASCII || cfg.Writer.ScanExisting || cfg.Writer.AllowMixedEndpoints {
		t.Errorf("Writer = %+v", cfg.Writer)
	}
	if cfg.Writer.CustomIDPrefix != "request" {
		t.Errorf("CustomIDPrefix = %q, want request", cfg.Writer.CustomIDPrefix)
	}
	v := cfg.Validator
	if !v.CheckCustomIDUniqueness || !v.CheckFileSize || !v.CheckRequestCount || v.AllowMixedEndpoints {
		t.Errorf("Validator = %+v", v)
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry should be disabled by default")
	}
	if cfg.Telemetry.Endpoint != "localhost:4318" || cfg.Telemetry.Interval != 15*time.Second || cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("Telemetry = %+v", cfg.Telemetry)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestApplyDefaultsKeepsNamespace(t *testing.T) {
	cfg := Config{Writer: WriterConfig{CustomIDNamespace: "6ba7b811-9dad-11d1-80b4-00c04fd430c8"}}
	cfg.ApplyDefaults()
	if cfg.Writer.CustomIDPrefix != "" {
		t.Errorf("prefix should stay empty when a namespace is set, got %q", cfg.Writer.CustomIDPrefix)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"default", func(*Config) {}, ""},
		{"staging", func(c *Config) { c.Environment = "staging" }, ""},
		{"production", func(c *Config) { c.Environment = "production" }, ""},
		{"unknown environment", func(c *Config) { c.Environment = "qa" }, "environment"},
		{"zero file limit", func(c *Config) { c.Limits.MaxFileBytes = 0 }, "max_file_bytes"},
		{"negative request limit", func(c *Config) { c.Limits.MaxRequests = -1 }, "max_requests"},
		{"bad namespace", func(c *Config) { c.Writer.CustomIDNamespace = "not-a-uuid" }, "custom_id_namespace"},
		{"sample rate above one", func(c *Config) { c.Telemetry.SampleRate = 1.5 }, "sample_rate"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "config.logging"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error mentioning %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tc.wantErr)
			}
		})
	}
}

// writeOne opens a writer with the config's options, adds one embeddings
// instance with id "doc" and returns the custom id written.
func writeOne(t *testing.T, cfg Config) string {
	t.Helper()
	opts, err := cfg.WriterOptions()
	if err != nil {
		t.Fatalf("WriterOptions: %v", err)
	}
	opts = append(opts, batch.WithLogger(logger.NewNop()), batch.WithMetrics(observability.NopMetrics()))

	path := filepath.Join(t.TempDir(), "out.jsonl")
	w, err := batch.Open(path, opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	err = w.AddEmbeddings(request.NewEmbeddings("text-embedding-3-small"), batch.EmbeddingInstance{ID: "doc", Inputs: []string{"hello"}})
	if err != nil {
		t.Fatalf("AddEmbeddings: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		t.Fatal("no line written")
	}
	var entry struct {
		CustomID string `json:"custom_id"`
	}
	if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	return entry.CustomID
}

func TestWriterOptions(t *testing.T) {
	t.Run("prefix", func(t *testing.T) {
		cfg := Default()
		cfg.Writer.CustomIDPrefix = "emb"
		if got := writeOne(t, cfg); got != "emb-doc" {
			t.Errorf("custom_id = %q, want emb-doc", got)
		}
	})

	t.Run("namespace", func(t *testing.T) {
		cfg := Default()
		cfg.Writer.CustomIDNamespace = "6ba7b811-9dad-11d1-80b4-00c04fd430c8"
		got := writeOne(t, cfg)
		if got == "doc" || got == "request-doc" || len(got) != 36 {
			t.Errorf("custom_id = %q, want a UUID", got)
		}
		if again := writeOne(t, cfg); again != got {
			t.Errorf("UUID ids should be stable: %q != %q", again, got)
		}
	})

	t.Run("bad namespace", func(t *testing.T) {
		cfg := Default()
		cfg.Writer.CustomIDNamespace = "zzz"
		if _, err := cfg.WriterOptions(); err == nil {
			t.Fatal("expected error for invalid namespace")
		}
	})
}

func TestVerifyOptions(t *testing.T) {
	cfg := Default()
	cfg.Validator.CheckFileSize = false
	cfg.Validator.AllowMixedEndpoints = true
	cfg.Limits.MaxRequests = 10

	got := verify.New(cfg.VerifyOptions()...).Options()
	want := verify.Options{
		CheckCustomIDUniqueness: true,
		CheckFileSize:           false,
		CheckRequestCount:       true,
		AllowMixedEndpoints:     true,
		Limits:                  request.Limits{MaxFileBytes: request.DefaultMaxFileBytes, MaxRequests: 10},
	}
	if got != want {
		t.Errorf("Options = %+v, want %+v", got, want)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "openbatch.yml", `
environment: staging
logging:
  level: debug
limits:
  max_requests: 1000
writer:
  scan_existing: true
  custom_id_prefix: job
validator:
  check_file_size: false
telemetry:
  interval: 30s
`)

	cfg, err := Load(WithConfigFile(path), WithEnvFile(filepath.Join(dir, "missing.env")))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != "staging" || cfg.Logging.Level != "debug" {
		t.Errorf("top-level values not loaded: %+v", cfg)
	}
	if cfg.Limits.MaxRequests != 1000 {
		t.Errorf("MaxRequests = %d, want 1000", cfg.Limits.MaxRequests)
	}
	if cfg.Limits.MaxFileBytes != request.DefaultMaxFileBytes {
		t.Errorf("MaxFileBytes = %d, want default", cfg.Limits.MaxFileBytes)
	}
	if !cfg.Writer.ScanExisting || cfg.Writer.CustomIDPrefix != "job" {
		t.Errorf("Writer = %+v", cfg.Writer)
	}
	// Booleans absent from the file keep their defaults.
	if !cfg.Writer.Strict || !cfg.Writer.EnsureASCII {
		t.Errorf("writer defaults lost: %+v", cfg.Writer)
	}
	if cfg.Validator.CheckFileSize || !cfg.Validator.CheckCustomIDUniqueness {
		t.Errorf("Validator = %+v", cfg.Validator)
	}
	if cfg.Telemetry.Interval != 30*time.Second {
		t.Errorf("Interval = %v, want 30s", cfg.Telemetry.Interval)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "openbatch.yml", "writer:\n  strict: true\n")
	t.Setenv("OPENBATCH_WRITER_STRICT", "false")
	t.Setenv("OPENBATCH_WRITER_SCAN_EXISTING", "true")
	t.Setenv("OPENBATCH_LIMITS_MAX_FILE_BYTES", "1048576")
	t.Setenv("OTHER_WRITER_SCAN_EXISTING", "false")

	cfg, err := Load(WithConfigFile(path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Writer.Strict {
		t.Error("OPENBATCH_WRITER_STRICT should override the file")
	}
	if !cfg.Writer.ScanExisting {
		t.Error("OPENBATCH_WRITER_SCAN_EXISTING not applied")
	}
	if cfg.Limits.MaxFileBytes != 1<<20 {
		t.Errorf("MaxFileBytes = %d, want %d", cfg.Limits.MaxFileBytes, 1<<20)
	}
}

func TestLoadEnvPrefix(t *testing.T) {
	t.Setenv("BATCHES_LOGGING_LEVEL", "warn")
	t.Setenv("OPENBATCH_LOGGING_LEVEL", "error")

	cfg, err := Load(WithConfigFile(filepath.Join(t.TempDir(), "none.yml")), WithEnvPrefix("batches"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoadEnvFile(t *testing.T) {
	const key = "OPENBATCH_VALIDATOR_ALLOW_MIXED_ENDPOINTS"
	unsetEnv(t, key)

	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", key+"=true\n")

	cfg, err := Load(WithConfigFile(filepath.Join(dir, "none.yml")), WithEnvFile(envPath))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Validator.AllowMixedEndpoints {
		t.Error(".env value not applied")
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("malformed file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "openbatch.yml", "writer: [unterminated\n")
		_, err := Load(WithConfigFile(path))
		if !errors.HasCode(err, errors.ErrCodeFileIO) {
			t.Fatalf("expected FILE_IO, got %v", err)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "openbatch.yml", "environment: qa\n")
		_, err := Load(WithConfigFile(path))
		if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
			t.Fatalf("expected INVALID_INPUT, got %v", err)
		}
	})

	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, err := Load(WithConfigFile(filepath.Join(t.TempDir(), "none.yml")))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Limits != request.DefaultLimits() {
			t.Errorf("Limits = %+v", cfg.Limits)
		}
	})
}

func TestLoadIntoCustomStruct(t *testing.T) {
	type section struct {
		Model string `yaml:"model" mapstructure:"model"`
		Count int    `yaml:"count" mapstructure:"count"`
	}
	type appConfig struct {
		Embed section `yaml:"embed" mapstructure:"embed"`
	}

	path := writeFile(t, t.TempDir(), "cfg.yml", "embed:\n  model: text-embedding-3-large\n")
	cfg := appConfig{Embed: section{Count: 4}}
	if err := LoadInto("embedder", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadInto: %v", err)
	}
	if cfg.Embed.Model != "text-embedding-3-large" || cfg.Embed.Count != 4 {
		t.Errorf("cfg = %+v", cfg)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(string) error    { return nil }

func TestResolveFiles(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		opts       LoaderConfig
		wantConfig string
		wantEnv    string
	}{
		{
			name:       "app file in working dir wins",
			files:      []string{"openbatch.yml", filepath.Join("config", "openbatch.yml"), "config.yml"},
			wantConfig: "openbatch.yml",
		},
		{
			name:       "config dir",
			files:      []string{filepath.Join("config", "openbatch.yaml"), "config.yml"},
			wantConfig: filepath.Join("config", "openbatch.yaml"),
		},
		{
			name:       "generic fallback",
			files:      []string{"config.yml", ".env"},
			wantConfig: "config.yml",
			wantEnv:    ".env",
		},
		{
			name:    "app env file wins",
			files:   []string{".env", ".env.openbatch"},
			wantEnv: ".env.openbatch",
		},
		{
			name:       "explicit paths",
			files:      []string{"openbatch.yml", ".env"},
			opts:       LoaderConfig{ConfigFile: "/etc/ob.yml", EnvFile: "/etc/ob.env"},
			wantConfig: "/etc/ob.yml",
			wantEnv:    "/etc/ob.env",
		},
		{name: "nothing found"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := &mockFS{files: map[string]bool{}}
			for _, f := range tc.files {
				fs.files[f] = true
			}
			got := (&Resolver{FileSystem: fs}).ResolveFiles(AppName, tc.opts)
			if got.ConfigFile != tc.wantConfig {
				t.Errorf("ConfigFile = %q, want %q", got.ConfigFile, tc.wantConfig)
			}
			if got.EnvFile != tc.wantEnv {
				t.Errorf("EnvFile = %q, want %q", got.EnvFile, tc.wantEnv)
			}
		})
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	WithFileSystem(fs)(&lc)
	WithConfigFile("/path/to/openbatch.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	WithEnvPrefix("OB")(&lc)

	if lc.FileSystem != fs {
		t.Error("FileSystem not set")
	}
	if lc.ConfigFile != "/path/to/openbatch.yml" || lc.EnvFile != "/path/to/.env" || lc.EnvPrefix != "OB" {
		t.Errorf("LoaderConfig = %+v", lc)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"NAME", []string{"name"}},
		{"LOGGING_LEVEL", []string{"logging_level", "logging.level"}},
		{"WRITER_SCAN_EXISTING", []string{
			"writer_scan_existing",
			"writer.scan.existing",
			"writer.scan_existing",
			"writer_scan.existing",
		}},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got := generateEnvKeyVariants(tc.in)
			if strings.Join(got, ",") != strings.Join(tc.want, ",") {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestInitTelemetryDisabled(t *testing.T) {
	cfg := Default()
	shutdown, err := cfg.InitTelemetry(context.Background())
	if err != nil {
		t.Fatalf("InitTelemetry: %v", err)
	}
	if shutdown == nil {
		t.Fatal("shutdown must not be nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestTelemetrySubConfigs(t *testing.T) {
	tel := Default().Telemetry
	tel.Endpoint = "collector:4318"
	tel.SampleRate = 0.25

	tc := tel.TracerConfig("svc", "production")
	if tc.ServiceName != "svc" || tc.Environment != "production" || tc.Endpoint != "collector:4318" || tc.SampleRate != 0.25 {
		t.Errorf("TracerConfig = %+v", tc)
	}
	mc := tel.MeterConfig("svc", "production")
	if mc.ServiceName != "svc" || mc.Interval != 15*time.Second {
		t.Errorf("MeterConfig = %+v", mc)
	}
}
