// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitConfigFile_WritesStarter(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var out bytes.Buffer
	if err := initConfigFile(&out, dir); err != nil {
		t.Fatalf("init: %v", err)
	}

	path := filepath.Join(dir, "config.cue")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if !strings.Contains(string(data), "checksum:") {
		t.Errorf("starter config missing checksum field:\n%s", data)
	}
	if !strings.Contains(out.String(), path) {
		t.Errorf("output should name the created file, got:\n%s", out.String())
	}
}

func TestInitConfigFile_RefusesOverwrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var out bytes.Buffer
	if err := initConfigFile(&out, dir); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if err := initConfigFile(&out, dir); err == nil {
		t.Fatal("second init should refuse to overwrite")
	}
}

func TestShowConfigPath(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	if err := showConfigPath(&out); err != nil {
		t.Fatalf("path: %v", err)
	}
	if !strings.Contains(out.String(), "/etc/minioctl/config.cue") {
		t.Errorf("missing system path in:\n%s", out.String())
	}
}
