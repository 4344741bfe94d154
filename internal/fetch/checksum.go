// SPDX-License-Identifier: MPL-2.0

// Package fetch downloads release binaries and verifies them against pinned
// checksums. Verification failure is fatal for the surrounding convergence
// run; no retry logic lives here.
package fetch

import (
	"crypto/md5"  //nolint:gosec // md5 is an accepted checksum_type for legacy mirrors, not used for signing
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

const (
	// DigestSHA256 selects SHA-256 verification (the default).
	DigestSHA256 DigestType = "sha256"
	// DigestSHA512 selects SHA-512 verification.
	DigestSHA512 DigestType = "sha512"
	// DigestMD5 selects MD5 verification, kept for mirrors that only publish
	// md5 sums.
	DigestMD5 DigestType = "md5"
)

var (
	// ErrChecksumMismatch indicates the computed digest does not match the
	// pinned value.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrUnknownDigestType indicates an unrecognized checksum_type value.
	ErrUnknownDigestType = errors.New("unknown checksum type")
)

type (
	// DigestType selects the hash function used for verification.
	DigestType string

	// ChecksumError provides details about a checksum verification failure.
	// It wraps ErrChecksumMismatch so callers can use errors.Is for
	// classification.
	ChecksumError struct {
		Path     string
		Expected string
		Got      string
	}
)

// Error returns a human-readable description of the checksum mismatch,
// showing both expected and actual values for debugging.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s\nExpected: %s\nGot:      %s", e.Path, e.Expected, e.Got)
}

// Unwrap returns ErrChecksumMismatch so callers can use errors.Is.
func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// HexLength returns the expected hex digest length for the type.
func (t DigestType) HexLength() int {
	switch t {
	case DigestSHA256:
		return 64
	case DigestSHA512:
		return 128
	case DigestMD5:
		return 32
	}
	return 0
}

// Valid reports whether the digest type is one of the supported values.
func (t DigestType) Valid() bool {
	return t.HexLength() != 0
}

// newHash returns a fresh hash.Hash for the type.
func (t DigestType) newHash() (hash.Hash, error) {
	switch t {
	case DigestSHA256:
		return sha256.New(), nil
	case DigestSHA512:
		return sha512.New(), nil
	case DigestMD5:
		return md5.New(), nil //nolint:gosec // see package comment on md5
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDigestType, string(t))
}

// VerifyFile computes the digest of the file at path and compares it with
// expected. Returns nil if the digests match (case-insensitive comparison),
// or a *ChecksumError wrapping ErrChecksumMismatch if they differ.
func VerifyFile(path string, typ DigestType, expected string) error {
	got, err := ComputeFileDigest(path, typ)
	if err != nil {
		return err
	}

	if !strings.EqualFold(got, expected) {
		return &ChecksumError{
			Path:     path,
			Expected: strings.ToLower(expected),
			Got:      got,
		}
	}

	return nil
}

// ComputeFileDigest computes and returns the lowercase hex-encoded digest of
// the file at path. It streams the file through the hash function to avoid
// loading the entire file into memory.
func ComputeFileDigest(path string, typ DigestType) (_ string, err error) {
	h, err := typ.newHash()
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		// Read-only file handle; close errors are exotic (NFS edge cases).
		_ = f.Close()
	}()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing file %s: %w", path, err)
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// IsValidHexDigest checks whether s is a well-formed hex digest for the type.
func IsValidHexDigest(s string, typ DigestType) bool {
	if len(s) != typ.HexLength() {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
