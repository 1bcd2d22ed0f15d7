package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LoadEnv applies .env files to the process environment without overriding
// variables that are already set. With no arguments the default .env in the
// working directory is tried and a missing file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Join(ErrLoadingEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Parse decodes the environment into a new T.
func Parse[T any]() (T, error) {
	v, err := env.ParseAs[T]()
	if err != nil {
		return v, errors.Join(ErrParsingConfig, err)
	}
	return v, nil
}

// ParseWithPrefix decodes the environment into a new T, prefixing every key.
func ParseWithPrefix[T any](prefix string) (T, error) {
	v, err := env.ParseAsWithOptions[T](env.Options{Prefix: prefix})
	if err != nil {
		return v, errors.Join(ErrParsingConfig, err)
	}
	return v, nil
}

// MustParse works like Parse but panics on failure. Use it for configuration
// the process cannot start without.
func MustParse[T any]() T {
	v, err := Parse[T]()
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return v
}
