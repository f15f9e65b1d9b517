// Package commands contains the CLI commands for the application
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/okra-platform/striter/internal/config"
	"github.com/okra-platform/striter/internal/hostapi"
	"github.com/okra-platform/striter/internal/realm"
	"github.com/okra-platform/striter/internal/text"
)

type Flags struct {
	LogLevel   string
	ConfigPath string
}

type Controller struct {
	Flags *Flags

	// Out receives command output, os.Stdout when nil
	Out io.Writer
	// Realm supplies the intrinsics, realm.Default() when nil
	Realm *realm.Realm
}

func (c *Controller) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Controller) realm() *realm.Realm {
	if c.Realm == nil {
		return realm.Default()
	}
	return c.Realm
}

// registry returns a registry holding every host API backed by c's realm
func (c *Controller) registry() (hostapi.Registry, error) {
	registry := hostapi.NewRegistry()
	if err := hostapi.InitializeHostAPIs(registry, c.realm()); err != nil {
		return nil, fmt.Errorf("failed to initialize host APIs: %w", err)
	}
	return registry, nil
}

// loadConfig reads --config when set, otherwise searches for striter.json
// and falls back to defaults when there is none
func (c *Controller) loadConfig() (*config.Config, error) {
	if c.Flags != nil && c.Flags.ConfigPath != "" {
		return config.LoadConfigFromPath(c.Flags.ConfigPath)
	}

	cfg, _, err := config.LoadConfig()
	if errors.Is(err, config.ErrNotFound) {
		return config.Default(), nil
	}
	return cfg, err
}

// parseInput turns a command argument into text. With units set the argument
// is a comma separated list of hex code units, which may hold lone surrogates.
func parseInput(arg string, units bool) (text.Text, error) {
	if !units {
		return text.FromString(arg), nil
	}
	return parseUnits(arg)
}

func parseUnits(arg string) (text.Text, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return text.Empty, nil
	}

	fields := strings.Split(arg, ",")
	units := make([]uint16, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		field = strings.TrimPrefix(strings.TrimPrefix(field, "0x"), "0X")
		u, err := strconv.ParseUint(field, 16, 16)
		if err != nil {
			return text.Empty, fmt.Errorf("invalid code unit %q: %w", field, err)
		}
		units = append(units, uint16(u))
	}
	return text.FromUnits(units), nil
}
