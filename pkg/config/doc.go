// Package config loads typed configuration from the process environment.
//
// Optional .env files are applied first with github.com/joho/godotenv; values
// already present in the environment win. The environment is then decoded into
// a struct with github.com/caarlos0/env/v11 using `env` and `envDefault` tags.
//
//	if err := config.LoadEnv(); err != nil {
//	    return err
//	}
//	cfg, err := config.Parse[accesskit.Config]()
package config
