// Package env loads settings from the process environment and
// optional .env files. Process variables take precedence over file
// values.
package env

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Prefix is prepended to every harness setting name.
const Prefix = "WEBACCEPT_"

// Loader defines the interface for environment variable management.
type Loader interface {
	// Load reads environment variables from a .env file.
	Load(path string) error
	// Get retrieves an environment variable value.
	Get(key string) string
	// GetRequired retrieves a required environment variable or returns error.
	GetRequired(key string) (string, error)
	// GetWithDefault retrieves an environment variable with a default fallback.
	GetWithDefault(key, defaultValue string) string
	// Setting retrieves a prefixed harness setting, falling back to
	// its registered aliases.
	Setting(name string) string
	// Set sets an environment variable.
	Set(key, value string) error
	// All returns all loaded environment variables.
	All() map[string]string
}

// DefaultLoader implements Loader with .env file support and
// setting aliases.
type DefaultLoader struct {
	mu      sync.RWMutex
	vars    map[string]string
	loaded  bool
	aliases map[string][]string // setting name -> unprefixed env vars
}

// NewLoader creates a DefaultLoader. The endpoint setting also
// answers to SELENIUM_REMOTE_URL, which the provisioned runner
// deployment sets.
func NewLoader() *DefaultLoader {
	return &DefaultLoader{
		vars: make(map[string]string),
		aliases: map[string][]string{
			"ENDPOINT":   {"SELENIUM_REMOTE_URL"},
			"NODE_COUNT": {"NODE_COUNT"},
		},
	}
}

// NewLoaderWithAliases creates a loader with additional setting
// aliases.
func NewLoaderWithAliases(aliases map[string][]string) *DefaultLoader {
	l := NewLoader()
	for k, v := range aliases {
		name := strings.ToUpper(k)
		l.aliases[name] = append(l.aliases[name], v...)
	}
	return l
}

// Load merges the variables of a .env file into l. Variables
// already loaded from other files are overwritten.
func (l *DefaultLoader) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open env file %s: %w", path, err)
	}
	defer f.Close()

	vars, err := Parse(f)
	if err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	maps.Copy(l.vars, vars)
	l.loaded = true
	return nil
}

// Parse reads KEY=VALUE lines. Blank lines and # comments are
// skipped, an "export " prefix is dropped and one pair of matching
// surrounding quotes is removed from the value.
func Parse(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		vars[strings.TrimSpace(key)] = unquote(strings.TrimSpace(value))
	}
	return vars, scanner.Err()
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// Get returns the process variable key, else the loaded value.
func (l *DefaultLoader) Get(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vars[key]
}

func (l *DefaultLoader) GetRequired(key string) (string, error) {
	if v := l.Get(key); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("required environment variable %s is not set", key)
}

func (l *DefaultLoader) GetWithDefault(key, defaultValue string) string {
	if v := l.Get(key); v != "" {
		return v
	}
	return defaultValue
}

// Setting looks up Prefix+name, then each alias of name in
// registration order.
func (l *DefaultLoader) Setting(name string) string {
	name = strings.ToUpper(name)
	if v := l.Get(Prefix + name); v != "" {
		return v
	}
	l.mu.RLock()
	aliases := l.aliases[name]
	l.mu.RUnlock()
	for _, alias := range aliases {
		if v := l.Get(alias); v != "" {
			return v
		}
	}
	return ""
}

// Set records key in l and exports it to the process.
func (l *DefaultLoader) Set(key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vars[key] = value
	return os.Setenv(key, value)
}

// All returns a copy of the loaded variables.
func (l *DefaultLoader) All() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.vars)
}

// Bool parses a setting as a boolean. Empty yields def.
func Bool(l Loader, name string, def bool) (bool, error) {
	raw := l.Setting(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("%s%s: %w", Prefix, name, err)
	}
	return v, nil
}

// Int parses a setting as an integer. Empty yields def.
func Int(l Loader, name string, def int) (int, error) {
	raw := l.Setting(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("%s%s: %w", Prefix, name, err)
	}
	return v, nil
}

// Duration parses a setting as a duration such as "20s". A bare
// number is taken as seconds. Empty yields def.
func Duration(l Loader, name string, def time.Duration) (time.Duration, error) {
	raw := l.Setting(name)
	if raw == "" {
		return def, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("%s%s: %w", Prefix, name, err)
	}
	return v, nil
}
