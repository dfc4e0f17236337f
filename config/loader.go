package config

import (
	"fmt"
	"os"
	"path"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/kbukum/depdep/logger"
)

// Resolver finds config and env files for a service on a file system.
type Resolver struct {
	Fs afero.Fs
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths when given, otherwise the first match
// in the standard search locations. Missing files resolve to "".
func (r *Resolver) ResolveFiles(serviceName string, lc LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: lc.ConfigFile,
		EnvFile:    lc.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(configSearchPaths(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(envSearchPaths(serviceName))
	}
	return resolved
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if ok, _ := afero.Exists(r.Fs, p); ok {
			return p
		}
	}
	return ""
}

func shortName(serviceName string) string {
	if idx := strings.LastIndex(serviceName, "-"); idx != -1 {
		return serviceName[idx+1:]
	}
	return serviceName
}

// configSearchPaths lists config.yml locations in priority order.
func configSearchPaths(serviceName string) []string {
	short := shortName(serviceName)
	return []string{
		fmt.Sprintf("cmd/%s/config.yml", serviceName),
		fmt.Sprintf("cmd/%s/config.yml", short),
		fmt.Sprintf("../cmd/%s/config.yml", serviceName),
		fmt.Sprintf("../../cmd/%s/config.yml", serviceName),
		"config/config.yml",
		"../config/config.yml",
		"config.yml",
	}
}

// envSearchPaths lists .env locations in priority order. A service
// specific .env.<name> wins over a plain .env in the same directory.
func envSearchPaths(serviceName string) []string {
	dirs := []string{
		fmt.Sprintf("cmd/%s", serviceName),
		fmt.Sprintf("config/%s", serviceName),
		"config",
		".",
		"..",
	}
	if short := shortName(serviceName); short != serviceName {
		dirs = append(dirs, fmt.Sprintf("cmd/%s", short))
	}

	paths := make([]string, 0, 2*len(dirs))
	for _, name := range []string{".env." + serviceName, ".env"} {
		for _, dir := range dirs {
			paths = append(paths, path.Join(dir, name))
		}
	}
	return paths
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	Fs         afero.Fs
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	EnvPrefix  string
	LookupEnv  func(string) (string, bool)
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFs sets the file system config and env files are read from.
func WithFs(fs afero.Fs) LoaderOption {
	return func(lc *LoaderConfig) { lc.Fs = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix requires environment variables to carry prefix, so
// server.port is read from PREFIX_SERVER_PORT.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.ToUpper(strings.TrimSuffix(prefix, "_")) }
}

// WithLookupEnv replaces os.LookupEnv as the source of process environment.
func WithLookupEnv(fn func(string) (string, bool)) LoaderOption {
	return func(lc *LoaderConfig) { lc.LookupEnv = fn }
}

// Load loads configuration for a service into cfg, which must be a pointer
// to a struct. An explicitly named file that does not exist is an error;
// files found by searching are optional.
func Load(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{
		Fs:        afero.NewOsFs(),
		LookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(&lc)
	}

	for _, explicit := range []string{lc.ConfigFile, lc.EnvFile} {
		if explicit == "" {
			continue
		}
		if ok, _ := afero.Exists(lc.Fs, explicit); !ok {
			return fmt.Errorf("config file %s for service %s not found", explicit, serviceName)
		}
	}

	resolver := &Resolver{Fs: lc.Fs}
	files := resolver.ResolveFiles(serviceName, lc)
	return loadFromResolvedFiles(serviceName, cfg, files, lc)
}

func loadFromResolvedFiles(serviceName string, cfg interface{}, files ResolvedFiles, lc LoaderConfig) error {
	log := logger.WithComponent("config")
	v := viper.New()
	v.SetFs(lc.Fs)

	// 1. YAML config is the base layer
	if files.ConfigFile != "" {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s for service %s: %w", files.ConfigFile, serviceName, err)
		}
		log.Debug("Config file loaded", logger.Fields(logger.FieldPath, files.ConfigFile))
	}

	// 2. .env values, parsed without touching the process environment
	dotenv := map[string]string{}
	if files.EnvFile != "" {
		parsed, err := readEnvFile(lc.Fs, files.EnvFile)
		if err != nil {
			return fmt.Errorf("failed to read env file %s for service %s: %w", files.EnvFile, serviceName, err)
		}
		dotenv = parsed
		log.Debug("Env file loaded", logger.Fields(logger.FieldPath, files.EnvFile))
	}

	// 3. Process environment wins over .env for every known key
	for _, key := range leafKeys(reflect.TypeOf(cfg)) {
		name := EnvName(lc.EnvPrefix, key)
		if val, ok := lc.LookupEnv(name); ok {
			v.Set(key, val)
		} else if val, ok := dotenv[name]; ok {
			v.Set(key, val)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

func readEnvFile(fs afero.Fs, name string) (map[string]string, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return godotenv.Parse(f)
}

// EnvName returns the environment variable that overrides the dotted key.
//
//	EnvName("", "server.read_timeout") -> SERVER_READ_TIMEOUT
//	EnvName("STATIC", "logging.level")  -> STATIC_LOGGING_LEVEL
func EnvName(prefix, key string) string {
	name := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

// leafKeys walks a struct type and returns the dotted mapstructure path of
// every non-struct field. Squashed embeds contribute their fields at the
// parent level.
func leafKeys(t reflect.Type) []string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return appendLeafKeys(nil, "", t)
}

func appendLeafKeys(keys []string, prefix string, t reflect.Type) []string {
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, squash := mapstructureName(f)
		if name == "-" {
			continue
		}

		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && !isScalarStruct(ft) {
			if squash {
				keys = appendLeafKeys(keys, prefix, ft)
			} else {
				keys = appendLeafKeys(keys, prefix+name+".", ft)
			}
			continue
		}
		keys = append(keys, prefix+name)
	}
	return keys
}

func mapstructureName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("mapstructure")
	name, opts, _ := strings.Cut(tag, ",")
	squash := strings.Contains(opts, "squash")
	if name == "" {
		name = strings.ToLower(f.Name)
	}
	return name, squash
}

// isScalarStruct reports struct types that decode from a single value.
func isScalarStruct(t reflect.Type) bool {
	return t.PkgPath() == "time" && t.Name() == "Time"
}
