// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net"

	"minioctl/internal/fetch"
)

const (
	// EnsurePresent installs and pins the server binary.
	EnsurePresent Ensure = "present"
	// EnsureAbsent skips binary installation entirely.
	EnsureAbsent Ensure = "absent"
)

var (
	// ErrInvalidEnsure is returned when package_ensure is not recognized.
	ErrInvalidEnsure = errors.New("invalid package_ensure")
	// ErrInvalidChecksum is returned when the pinned checksum is not a
	// well-formed hex digest for the configured checksum type.
	ErrInvalidChecksum = errors.New("invalid checksum")
	// ErrInvalidListenAddr is returned for an unparseable listen_ip.
	ErrInvalidListenAddr = errors.New("invalid listen_ip")
	// ErrMissingPin is returned when package_ensure is "present" but version
	// or checksum is empty. Releases must be pinned explicitly; there is no
	// "latest" mode.
	ErrMissingPin = errors.New("version and checksum must be pinned")
)

type (
	// Ensure selects whether the server binary is installed.
	Ensure string

	// Config is the Parameter Set for one convergence run. It is resolved
	// once at invocation time and treated as immutable for the run.
	Config struct {
		PackageEnsure          Ensure           `mapstructure:"package_ensure" toml:"package_ensure"`
		Owner                  string           `mapstructure:"owner" toml:"owner"`
		Group                  string           `mapstructure:"group" toml:"group"`
		BaseURL                string           `mapstructure:"base_url" toml:"base_url"`
		Version                string           `mapstructure:"version" toml:"version"`
		Checksum               string           `mapstructure:"checksum" toml:"checksum"`
		ChecksumType           fetch.DigestType `mapstructure:"checksum_type" toml:"checksum_type"`
		ConfigurationDirectory string           `mapstructure:"configuration_directory" toml:"configuration_directory"`
		InstallationDirectory  string           `mapstructure:"installation_directory" toml:"installation_directory"`
		StorageRoot            string           `mapstructure:"storage_root" toml:"storage_root"`
		StorageVolume          string           `mapstructure:"storage_volume" toml:"storage_volume"`
		ListenIP               string           `mapstructure:"listen_ip" toml:"listen_ip"`
		ListenPort             int              `mapstructure:"listen_port" toml:"listen_port"`
		ManageService          bool             `mapstructure:"manage_service" toml:"manage_service"`
		ServiceTemplate        string           `mapstructure:"service_template" toml:"service_template"`
		ServiceProvider        string           `mapstructure:"service_provider" toml:"service_provider"`
		CertSourceDirectory    string           `mapstructure:"cert_source_directory" toml:"cert_source_directory"`
	}
)

// DefaultConfig returns the defaults for every parameter except the release
// pin (version/checksum), which must be supplied per release.
func DefaultConfig() *Config {
	return &Config{
		PackageEnsure:          EnsurePresent,
		Owner:                  "minio",
		Group:                  "minio",
		BaseURL:                "https://dl.minio.io/server/minio/release",
		ChecksumType:           fetch.DigestSHA256,
		ConfigurationDirectory: "/etc/minio",
		InstallationDirectory:  "/opt/minio",
		StorageRoot:            "/var/minio",
		ListenIP:               "127.0.0.1",
		ListenPort:             9000,
		ManageService:          true,
		ServiceProvider:        "systemd",
		CertSourceDirectory:    "/mnt/secrets/minio",
	}
}

// Validate enforces the constraints the CUE schema cannot express: digest
// well-formedness against the configured type, the release pin, and the
// listen address. The service provider is deliberately not validated here;
// that check belongs to recipe construction so its error surfaces in run
// order, before any service resource.
func (c *Config) Validate() error {
	switch c.PackageEnsure {
	case EnsurePresent, EnsureAbsent:
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidEnsure, c.PackageEnsure, EnsurePresent, EnsureAbsent)
	}

	if c.PackageEnsure == EnsurePresent {
		if c.Version == "" || c.Checksum == "" {
			return fmt.Errorf("%w: got version=%q checksum=%q", ErrMissingPin, c.Version, c.Checksum)
		}
		if !c.ChecksumType.Valid() {
			return fmt.Errorf("%w: unknown checksum_type %q", ErrInvalidChecksum, c.ChecksumType)
		}
		if !fetch.IsValidHexDigest(c.Checksum, c.ChecksumType) {
			return fmt.Errorf("%w: %q is not a %d-character hex %s digest",
				ErrInvalidChecksum, c.Checksum, c.ChecksumType.HexLength(), c.ChecksumType)
		}
	}

	if net.ParseIP(c.ListenIP) == nil {
		return fmt.Errorf("%w: %q", ErrInvalidListenAddr, c.ListenIP)
	}
	if c.ListenPort < 1 || c.ListenPort > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidListenAddr, c.ListenPort)
	}

	return nil
}

// BinaryPath is the installed server binary location.
func (c *Config) BinaryPath() string {
	return c.InstallationDirectory + "/minio"
}

// CertsDirectory is where the server expects its TLS material.
func (c *Config) CertsDirectory() string {
	return c.ConfigurationDirectory + "/.minio/certs"
}
