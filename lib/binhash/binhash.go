// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"
	"strings"
)

// Algorithm identifies the checksum a release was published with.
type Algorithm string

const (
	CRC32 Algorithm = "crc32"
	SHA1  Algorithm = "sha1"
)

// ParseAlgorithm accepts "crc32" or "sha1" in any case.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch algorithm := Algorithm(strings.ToLower(strings.TrimSpace(name))); algorithm {
	case CRC32, SHA1:
		return algorithm, nil
	default:
		return "", fmt.Errorf("unknown checksum algorithm %q (want crc32 or sha1)", name)
	}
}

// DigestLength returns the number of hex digits a digest has.
func (a Algorithm) DigestLength() int {
	switch a {
	case CRC32:
		return 8
	case SHA1:
		return 40
	default:
		return 0
	}
}

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case CRC32:
		return crc32.NewIEEE(), nil
	case SHA1:
		return sha1.New(), nil
	default:
		return nil, fmt.Errorf("unknown checksum algorithm %q", string(a))
	}
}

// HashFile computes the digest of the file at path. The file is
// streamed through the hash function in chunks (via io.Copy) so memory
// stays constant regardless of volume size.
func HashFile(path string, algorithm Algorithm) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	digest, err := HashReader(file, algorithm)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return digest, nil
}

// HashReader computes the digest of everything read from reader.
func HashReader(reader io.Reader, algorithm Algorithm) (string, error) {
	hasher, err := algorithm.newHash()
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(hasher, reader); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(hasher.Sum(nil))), nil
}

// ParseDigest validates a hex digest for algorithm and returns it in
// upper case.
func ParseDigest(algorithm Algorithm, digest string) (string, error) {
	trimmed := strings.TrimSpace(digest)
	want := algorithm.DigestLength()
	if want == 0 {
		return "", fmt.Errorf("unknown checksum algorithm %q", string(algorithm))
	}
	if len(trimmed) != want {
		return "", fmt.Errorf("%s digest %q has %d hex digits, want %d", algorithm, digest, len(trimmed), want)
	}
	if _, err := hex.DecodeString(trimmed); err != nil {
		return "", fmt.Errorf("parsing %s digest %q: %w", algorithm, digest, err)
	}
	return strings.ToUpper(trimmed), nil
}

// Hasher computes volume digests. [FileHasher] reads the file; tests
// substitute fixed digests.
type Hasher interface {
	HashFile(path string, algorithm Algorithm) (string, error)
}

// FileHasher hashes files on disk with [HashFile].
type FileHasher struct{}

// HashFile implements [Hasher].
func (FileHasher) HashFile(path string, algorithm Algorithm) (string, error) {
	return HashFile(path, algorithm)
}
