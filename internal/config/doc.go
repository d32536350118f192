// Package config handles configuration loading, parsing, and validation
// from a config.yaml file and TASKMANAGER_* environment variables. It provides
// type-safe access to the settings needed by the server, the storage backends,
// and token issuance while keeping configuration details separate from
// business logic.
package config
