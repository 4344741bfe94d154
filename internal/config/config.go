// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"minioctl/internal/issue"
)

const (
	// AppName is the application name, used for config directory layout.
	AppName = "minioctl"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// SystemConfigDir is the system-wide config location, checked before the
	// per-user directory since the tool usually runs as root on the target
	// host.
	SystemConfigDir = "/etc/minioctl"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the per-user configuration directory:
// $XDG_CONFIG_HOME/minioctl, defaulting to ~/.config/minioctl.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}

	return filepath.Join(configDir, AppName), nil
}

// Load resolves the Parameter Set: defaults, then the first config file
// found (explicit path > system dir > user dir > current dir), then domain
// validation. Returns the config and the resolved file path ("" when running
// on pure defaults).
func Load(configFilePath string) (*Config, string, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("package_ensure", string(defaults.PackageEnsure))
	v.SetDefault("owner", defaults.Owner)
	v.SetDefault("group", defaults.Group)
	v.SetDefault("base_url", defaults.BaseURL)
	v.SetDefault("checksum_type", string(defaults.ChecksumType))
	v.SetDefault("configuration_directory", defaults.ConfigurationDirectory)
	v.SetDefault("installation_directory", defaults.InstallationDirectory)
	v.SetDefault("storage_root", defaults.StorageRoot)
	v.SetDefault("listen_ip", defaults.ListenIP)
	v.SetDefault("listen_port", defaults.ListenPort)
	v.SetDefault("manage_service", defaults.ManageService)
	v.SetDefault("service_provider", defaults.ServiceProvider)
	v.SetDefault("cert_source_directory", defaults.CertSourceDirectory)

	resolvedPath := ""

	if configFilePath != "" {
		if !fileExists(configFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(configFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'minioctl config init' to create a starter file").
				Wrap(fmt.Errorf("config file not found: %s", configFilePath)).
				BuildError()
		}
		resolvedPath = configFilePath
	} else {
		resolvedPath = findConfigFile()
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the values match the expected schema").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Pin version and checksum to a published release").
			WithSuggestion("Check checksum_type matches the digest length").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// findConfigFile returns the first config file present in the search order,
// or "" when none exists (defaults-only run).
func findConfigFile() string {
	name := ConfigFileName + "." + ConfigFileExt

	candidates := []string{filepath.Join(SystemConfigDir, name)}
	if userDir, err := ConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(userDir, name))
	}
	candidates = append(candidates, name)

	for _, path := range candidates {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config
// schema, and merges its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return fmt.Errorf("invalid CUE in %s: %w", path, userValue.Err())
	}

	// Unify with the schema to validate against the #Config definition.
	// Concrete(false) because all config fields are optional.
	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return fmt.Errorf("config %s does not match schema: %w", path, err)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return fmt.Errorf("decoding config %s: %w", path, err)
	}

	for key, value := range configMap {
		v.Set(key, value)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// starterConfig is the file written by `minioctl config init`. Defaults are
// spelled out commented so operators see every knob; the release pin is the
// only thing that must be filled in.
const starterConfig = `// minioctl configuration (CUE syntax).
//
// Pin the release before the first apply. Checksums for each release are
// published alongside the binaries on the download mirror.
version:  ""
checksum: ""

// package_ensure:           "present"
// owner:                    "minio"
// group:                    "minio"
// base_url:                 "https://dl.minio.io/server/minio/release"
// checksum_type:            "sha256"
// configuration_directory:  "/etc/minio"
// installation_directory:   "/opt/minio"
// storage_root:             "/var/minio"
// storage_volume:           ""
// listen_ip:                "127.0.0.1"
// listen_port:              9000
// manage_service:           true
// service_template:         ""
// service_provider:         "systemd"
// cert_source_directory:    "/mnt/secrets/minio"
`

// WriteStarterConfig creates the starter config file in dir (the system
// config directory when dir is empty). Refuses to overwrite an existing
// file.
func WriteStarterConfig(dir string) (string, error) {
	if dir == "" {
		dir = SystemConfigDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(path) {
		return path, fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
