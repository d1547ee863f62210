package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/kbukum/openbatch/errors"
	"github.com/kbukum/openbatch/logger"
)

// EnvPrefix is the default prefix of environment variables read by Load.
const EnvPrefix = "OPENBATCH"

// FileSystem abstracts the file lookups of the loader.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem on the local disk.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadEnv loads a .env file without overriding variables already set.
func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths from opts, or searches the
// standard locations for the missing ones.
func (r *Resolver) ResolveFiles(name string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(configCandidates(name))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(envCandidates(name))
	}
	return resolved
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// configCandidates lists <name>.yml/.yaml/.json/.toml in ./, ./config and
// ../config, then config.yml in the same directories.
func configCandidates(name string) []string {
	dirs := []string{".", "config", filepath.Join("..", "config")}
	var out []string
	for _, base := range []string{name, "config"} {
		for _, dir := range dirs {
			for _, ext := range []string{".yml", ".yaml", ".json", ".toml"} {
				out = append(out, filepath.Join(dir, base+ext))
			}
		}
	}
	return out
}

// envCandidates lists .env.<name> and .env in ./ and ./config.
func envCandidates(name string) []string {
	var out []string
	for _, file := range []string{".env." + name, ".env"} {
		for _, dir := range []string{".", "config"} {
			out = append(out, filepath.Join(dir, file))
		}
	}
	return out
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file path (optional)
	EnvFile    string // explicit env file path (optional)
	EnvPrefix  string // defaults to EnvPrefix
}

// LoaderOption is a functional option for Load and LoadInto.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix sets the prefix environment variables must carry.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// Load reads the openbatch configuration: defaults, then the config file,
// then OPENBATCH_* environment variables (including those from a .env file).
// The result has defaults applied and is validated.
func Load(opts ...LoaderOption) (*Config, error) {
	cfg := Default()
	if err := LoadInto(AppName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadInto loads configuration for name into cfg. Values already in cfg act
// as defaults.
func LoadInto(name string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{EnvPrefix: EnvPrefix}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(name, lc)
	return loadFromResolvedFiles(name, cfg, files, lc)
}

func loadFromResolvedFiles(name string, cfg any, files ResolvedFiles, lc LoaderConfig) error {
	log := logger.Get("config")
	v := viper.New()

	if err := seedDefaults(v, cfg); err != nil {
		return err
	}

	if files.ConfigFile != "" {
		if lc.FileSystem.Exists(files.ConfigFile) {
			v.SetConfigFile(files.ConfigFile)
			if err := v.ReadInConfig(); err != nil {
				return errors.FileIO("read config", files.ConfigFile, err)
			}
			log.Debug("config file loaded", logger.Fields(logger.FieldPath, files.ConfigFile))
		} else {
			log.Warn("config file not found", logger.Fields(logger.FieldPath, files.ConfigFile))
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("failed to load .env file", logger.Fields(logger.FieldPath, files.EnvFile, logger.FieldError, err.Error()))
		}
	}
	bindPrefixedEnv(v, lc.EnvPrefix)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for %s: %w", name, err)
	}
	return nil
}

// seedDefaults registers the current values of cfg as viper defaults so
// fields absent from every source keep them.
func seedDefaults(v *viper.Viper, cfg any) error {
	var current map[string]any
	if err := decodeToMap(cfg, &current); err != nil {
		return fmt.Errorf("reading config defaults: %w", err)
	}
	for key, val := range flatten("", current) {
		v.SetDefault(key, val)
	}
	return nil
}

// decodeToMap round-trips v through YAML so the keys follow the yaml tags,
// which match the mapstructure tags viper reads.
func decodeToMap(v any, out *map[string]any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

func flatten(prefix string, m map[string]any) map[string]any {
	out := make(map[string]any)
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]any); ok && len(nested) > 0 {
			for nk, nv := range flatten(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = val
	}
	return out
}

// bindPrefixedEnv sets every PREFIX_* environment variable under all the
// nested key spellings its name could stand for.
func bindPrefixedEnv(v *viper.Viper, prefix string) {
	head := strings.ToUpper(prefix) + "_"
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, head) {
			continue
		}
		for _, variant := range generateEnvKeyVariants(strings.TrimPrefix(key, head)) {
			v.Set(variant, value)
		}
	}
}

// generateEnvKeyVariants creates the possible viper keys of an env name.
// Examples:
//
//	LOGGING_LEVEL          -> [logging_level, logging.level]
//	WRITER_SCAN_EXISTING   -> [writer_scan_existing, writer.scan.existing, writer.scan_existing, writer_scan.existing]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")

	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}

	// One dot at each split point, underscores elsewhere.
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], "_")
		suffix := strings.Join(parts[i:], "_")
		variants = append(variants, prefix+"."+suffix)
	}

	return removeDuplicates(variants)
}

// removeDuplicates removes duplicate strings from a slice, keeping order.
func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))

	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}
