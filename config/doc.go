// Package config loads, validates and persists the workspace root config
// file (.pmnpsrc.json).
//
// Loading uses Viper: the JSON file is read first, then a .env file in the
// workspace root, then PMNPS_-prefixed environment variables override
// individual keys (PMNPS_PACKAGEMANAGER=pnpm, PMNPS_LOGGING_LEVEL=debug).
//
// # Usage
//
//	store := config.NewStore(root)
//	cfg, err := store.Load()
//	...
//	err = store.Update(func(c *config.Config) { c.Publishable = true })
//
// There is no process-wide cache: callers pass the loaded *Config down
// explicitly.
package config
