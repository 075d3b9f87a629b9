package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const configPathEnv = "CONFIG_FILE"

// LoadConfig hydrates the provided struct pointer from an optional YAML file
// (path taken from CONFIG_FILE) and then overrides fields from environment
// variables. Nested structs map to PARENT_CHILD env keys unless an explicit
// `env:"KEY"` tag is present.
func LoadConfig(target interface{}) error {
	if target == nil {
		return errors.New("config: target is nil")
	}

	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return errors.New("config: target must be pointer to struct")
	}

	if path := strings.TrimSpace(os.Getenv(configPathEnv)); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, target); err != nil {
			return fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	return applyEnv(val.Elem(), "")
}

func applyEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fieldVal := v.Field(i)
		fieldType := t.Field(i)

		if !fieldVal.CanSet() {
			continue
		}
		if fieldType.Anonymous {
			if err := applyEnv(fieldVal, prefix); err != nil {
				return err
			}
			continue
		}

		tag := fieldType.Tag.Get("env")
		if tag == "-" {
			continue
		}

		key := envKey(prefix, fieldType.Name)
		if tag != "" {
			key = envKey("", tag)
		}

		if fieldVal.Kind() == reflect.Struct {
			if err := applyEnv(fieldVal, key); err != nil {
				return err
			}
			continue
		}

		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if err := setField(fieldVal, raw); err != nil {
			return fmt.Errorf("config: parse %s: %w", key, err)
		}
	}
	return nil
}

func envKey(prefix, name string) string {
	name = strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(parsed)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		parsed, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(parsed)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		parsed, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(parsed)
	case reflect.Float32, reflect.Float64:
		parsed, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(parsed)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type().String())
	}
	return nil
}
