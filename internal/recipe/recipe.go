// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	"fmt"
	"path/filepath"

	"minioctl/internal/config"
	"minioctl/internal/dag"
	"minioctl/internal/fetch"
	"minioctl/internal/platform"
	"minioctl/internal/resource"
	"minioctl/internal/systemd"
)

// Resource IDs. Stable names, used in graph edges, run reports, and tests.
const (
	IDStorageVolume = "storage-volume"
	IDStorageRoot   = "storage-root"
	IDConfigDir     = "config-dir"
	IDInstallDir    = "install-dir"
	IDCertsDir      = "certs-dir"
	IDPrivateKey    = "private-key"
	IDPublicCert    = "public-cert"
	IDBinary        = "minio-binary"
	IDServiceUnit   = "service-unit"
	IDService       = "minio-service"
	IDChownStorage  = "chown-storage"
	IDChownConfig   = "chown-config"
	IDChownInstall  = "chown-install"
)

// UnitFileName is the installed systemd unit name.
const UnitFileName = "minio.service"

type (
	// Options injects the host-touching collaborators so tests can build a
	// recipe against fakes. Zero value means production defaults.
	Options struct {
		// Ctl runs systemctl; nil means the real binary.
		Ctl *systemd.Systemctl
		// Client downloads the server binary; nil means a default client.
		Client *fetch.Client
		// UnitDir overrides the systemd unit directory.
		UnitDir string
		// Facts overrides uname-derived host facts.
		Facts *platform.Facts
	}

	// Recipe is the assembled convergence graph plus the resources it
	// orders, ready to hand to the engine.
	Recipe struct {
		Graph     *dag.Graph
		Resources map[string]resource.Resource
	}
)

// Build assembles the resource graph for the given configuration.
//
// The backbone is a strict Require chain: optional mount precondition,
// storage root, configuration directory, installation directory, certs
// directory, private key, public certificate. The binary (when the package
// is present) and the service unit hang off the installation directory.
// Certificates, the binary, and the unit all Notify the service; each
// managed directory Notifies its recursive chown command.
//
// The service provider is validated up front so an unsupported value fails
// before any service resource exists.
func Build(cfg *config.Config, opts Options) (*Recipe, error) {
	if cfg.ManageService {
		if err := systemd.ValidateProvider(cfg.ServiceProvider); err != nil {
			return nil, err
		}
	}

	owner, err := resource.LookupOwnership(cfg.Owner, cfg.Group)
	if err != nil {
		return nil, fmt.Errorf("resolving owner %s:%s: %w", cfg.Owner, cfg.Group, err)
	}

	ctl := opts.Ctl
	if ctl == nil {
		ctl = systemd.New(nil)
	}
	client := opts.Client
	if client == nil {
		client = fetch.NewClient()
	}
	unitDir := opts.UnitDir
	if unitDir == "" {
		unitDir = systemd.UnitDir
	}

	r := &Recipe{
		Graph:     dag.New(),
		Resources: map[string]resource.Resource{},
	}

	// 1..6: the Require chain.
	prev := ""
	if cfg.StorageVolume != "" {
		prev = r.require(prev, &resource.Mount{
			Name:   IDStorageVolume,
			Volume: cfg.StorageVolume,
		})
	}
	prev = r.require(prev, &resource.Dir{
		Name:  IDStorageRoot,
		Path:  cfg.StorageRoot,
		Owner: owner,
		Mode:  0o755,
	})
	prev = r.require(prev, &resource.Dir{
		Name:  IDConfigDir,
		Path:  cfg.ConfigurationDirectory,
		Owner: owner,
		Mode:  0o755,
	})
	prev = r.require(prev, &resource.Dir{
		Name:  IDInstallDir,
		Path:  cfg.InstallationDirectory,
		Owner: owner,
		Mode:  0o755,
	})
	prev = r.require(prev, &resource.Dir{
		Name:  IDCertsDir,
		Path:  cfg.CertsDirectory(),
		Owner: owner,
		Mode:  0o755,
	})
	prev = r.require(prev, &resource.FileCopy{
		Name:   IDPrivateKey,
		Source: filepath.Join(cfg.CertSourceDirectory, "private.key"),
		Target: filepath.Join(cfg.CertsDirectory(), "private.key"),
		Owner:  owner,
		Mode:   0o600,
	})
	r.require(prev, &resource.FileCopy{
		Name:   IDPublicCert,
		Source: filepath.Join(cfg.CertSourceDirectory, "public.crt"),
		Target: filepath.Join(cfg.CertsDirectory(), "public.crt"),
		Owner:  owner,
		Mode:   0o644,
	})

	// 7: the pinned binary, hanging off the installation directory.
	if cfg.PackageEnsure == config.EnsurePresent {
		facts, err := hostFacts(opts)
		if err != nil {
			return nil, err
		}
		r.add(&resource.RemoteFile{
			Name:       IDBinary,
			URL:        platform.DownloadURL(cfg.BaseURL, facts, cfg.Version),
			Target:     cfg.BinaryPath(),
			Digest:     cfg.Checksum,
			DigestType: cfg.ChecksumType,
			Owner:      owner,
			Mode:       0o744,
			Client:     client,
		})
		r.Graph.AddEdge(IDInstallDir, IDBinary, dag.Require)
	}

	// 8/9: unit file and service.
	if cfg.ManageService {
		content, err := systemd.RenderUnit(cfg.ServiceTemplate, systemd.UnitContext{
			Owner:                  cfg.Owner,
			Group:                  cfg.Group,
			InstallationDirectory:  cfg.InstallationDirectory,
			ConfigurationDirectory: cfg.ConfigurationDirectory,
			StorageRoot:            cfg.StorageRoot,
			ListenIP:               cfg.ListenIP,
			ListenPort:             cfg.ListenPort,
		})
		if err != nil {
			return nil, err
		}

		r.add(&resource.ServiceUnit{
			Name:    IDServiceUnit,
			Path:    filepath.Join(unitDir, UnitFileName),
			Content: content,
			Ctl:     ctl,
		})
		r.Graph.AddEdge(IDInstallDir, IDServiceUnit, dag.Require)

		r.add(&resource.Service{
			Name: IDService,
			Unit: UnitFileName,
			Ctl:  ctl,
		})
		r.Graph.AddEdge(IDServiceUnit, IDService, dag.Notify)
		r.Graph.AddEdge(IDPrivateKey, IDService, dag.Notify)
		r.Graph.AddEdge(IDPublicCert, IDService, dag.Notify)
		if cfg.PackageEnsure == config.EnsurePresent {
			r.Graph.AddEdge(IDBinary, IDService, dag.Notify)
		}
	}

	// Recursive ownership fix-ups, one per managed directory, fired only
	// when that directory changed.
	r.chown(IDStorageRoot, IDChownStorage, cfg.StorageRoot, cfg)
	r.chown(IDConfigDir, IDChownConfig, cfg.ConfigurationDirectory, cfg)
	r.chown(IDInstallDir, IDChownInstall, cfg.InstallationDirectory, cfg)

	return r, nil
}

func (r *Recipe) add(res resource.Resource) {
	r.Resources[res.ID()] = res
	r.Graph.AddNode(res.ID())
}

// require adds res and chains it after prev; empty prev starts the chain.
func (r *Recipe) require(prev string, res resource.Resource) string {
	r.add(res)
	if prev != "" {
		r.Graph.AddEdge(prev, res.ID(), dag.Require)
	}
	return res.ID()
}

func (r *Recipe) chown(dirID, cmdID, path string, cfg *config.Config) {
	r.add(&resource.Command{
		Name:   cmdID,
		Script: fmt.Sprintf("chown -R %s:%s %s", cfg.Owner, cfg.Group, path),
	})
	r.Graph.AddEdge(dirID, cmdID, dag.Notify)
}

func hostFacts(opts Options) (platform.Facts, error) {
	if opts.Facts != nil {
		return *opts.Facts, nil
	}
	facts, err := platform.Gather()
	if err != nil {
		return platform.Facts{}, fmt.Errorf("gathering host facts: %w", err)
	}
	return facts, nil
}
