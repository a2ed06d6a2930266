// Package config loads YAML configuration files with ${VAR} expansion and
// optional per-field environment overrides.
package config

import (
	"encoding"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Option tunes a load.
type Option func(*loader)

type loader struct {
	envPrefix string
}

// WithEnvPrefix makes PREFIX_SECTION_FIELD environment variables override
// the matching yaml fields after the file is read. Names are the yaml keys
// upper-cased and joined with underscores, e.g. VOCAB_APP_HTTP_PORT.
func WithEnvPrefix(prefix string) Option {
	return func(l *loader) { l.envPrefix = strings.ToUpper(prefix) }
}

// Load reads filename into target, expanding ${VAR} references first.
// Values absent from the file keep whatever target already holds.
func Load[T any](filename string, target *T, opts ...Option) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return finish(target, opts)
}

// LoadWithDefaults behaves like Load, but a missing file is not an error:
// target keeps its defaults, still gets env overrides and is validated. It
// reports whether the file was read.
func LoadWithDefaults[T any](filename string, target *T, opts ...Option) (bool, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return false, finish(target, opts)
	}
	return true, Load(filename, target, opts...)
}

func finish[T any](target *T, opts []Option) error {
	var l loader
	for _, opt := range opts {
		opt(&l)
	}
	if l.envPrefix != "" {
		if err := applyEnv(reflect.ValueOf(target).Elem(), l.envPrefix); err != nil {
			return err
		}
	}
	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

var (
	textUnmarshaler = reflect.TypeFor[encoding.TextUnmarshaler]()
	durationType    = reflect.TypeFor[time.Duration]()
)

// applyEnv walks the yaml-tagged fields of v and sets those with a matching
// environment variable.
func applyEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		key := strings.Split(field.Tag.Get("yaml"), ",")[0]
		if key == "-" {
			continue
		}
		if key == "" {
			key = field.Name
		}
		name := prefix + "_" + strings.ToUpper(key)
		fv := v.Field(i)

		if fv.Kind() == reflect.Struct && !reflect.PointerTo(fv.Type()).Implements(textUnmarshaler) {
			if err := applyEnv(fv, name); err != nil {
				return err
			}
			continue
		}
		raw, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if err := setValue(fv, raw); err != nil {
			return fmt.Errorf("env %s: %w", name, err)
		}
	}
	return nil
}

func setValue(fv reflect.Value, raw string) error {
	if fv.CanAddr() && fv.Addr().Type().Implements(textUnmarshaler) {
		return fv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw))
	}
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		fv.SetInt(int64(d))
		return nil
	}
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(n)
	default:
		return fmt.Errorf("unsupported kind %s", fv.Kind())
	}
	return nil
}
