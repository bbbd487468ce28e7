// Package config loads application configuration from environment variables
// into tagged structs, wrapping github.com/caarlos0/env and
// github.com/joho/godotenv.
//
// A default .env file in the working directory is loaded once per process;
// additional files can be loaded explicitly with LoadEnv. Parsing is
// delegated to env.Parse, so all of its tag syntax applies:
//
//	type Config struct {
//	    BusBuffer int    `env:"DOCFLOW_BUS_BUFFER" envDefault:"16"`
//	    LogFormat string `env:"DOCFLOW_LOG_FORMAT" envDefault:"json"`
//	    Service   string `env:"DOCFLOW_SERVICE,required"`
//	}
//
// MustLoad panics on failure for configuration the process cannot start
// without.
package config
