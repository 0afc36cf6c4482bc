package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by LoadEnv.
const (
	EnvDB      = "POCKET_DB"
	EnvBridge  = "POCKET_BRIDGE"
	EnvSSHAddr = "POCKET_SSH_ADDR"
	EnvFPS     = "POCKET_FPS"
)

// Env holds defaults for command-line flags taken from the environment.
type Env struct {
	DB      string // scores database path
	Bridge  string // sensor bridge listen address, empty to disable
	SSHAddr string // SSH server listen address
	FPS     int    // 0 when unset
}

// LoadEnv reads the given .env files (".env" when none are named) into
// the process environment and returns the POCKET_* values. Missing files
// are not an error; variables already set win over the files.
func LoadEnv(files ...string) (Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Env{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	env := Env{
		DB:      os.Getenv(EnvDB),
		Bridge:  os.Getenv(EnvBridge),
		SSHAddr: os.Getenv(EnvSSHAddr),
	}
	if v := os.Getenv(EnvFPS); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil || fps <= 0 {
			return Env{}, fmt.Errorf("config: %s=%q is not a positive integer", EnvFPS, v)
		}
		env.FPS = fps
	}
	return env, nil
}

// Or returns v, or fallback when v is empty.
func Or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
