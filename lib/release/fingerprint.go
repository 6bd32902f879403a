// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// fingerprintKey is the BLAKE3 key for release fingerprints: the ASCII
// domain name zero-padded to 32 bytes.
var fingerprintKey = [32]byte{
	'r', 'e', 'r', 'a', 'r', '.', 'r', 'e', 'l', 'e', 'a', 's', 'e', '.',
	'f', 'i', 'n', 'g', 'e', 'r', 'p', 'r', 'i', 'n', 't',
}

// Fingerprint returns the keyed BLAKE3 digest of the inputs in order.
// Each input contributes its name, its size and its content, so a
// rename or reorder changes the fingerprint as surely as an edit.
func Fingerprint(inputs []Input) (string, error) {
	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		return "", fmt.Errorf("release fingerprint: %w", err)
	}
	var prefix [binary.MaxVarintLen64]byte
	for _, input := range inputs {
		hasher.Write(prefix[:binary.PutUvarint(prefix[:], uint64(len(input.Name)))])
		hasher.Write([]byte(input.Name))
		hasher.Write(prefix[:binary.PutUvarint(prefix[:], uint64(input.Size))])

		if err := hashContent(hasher, input); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func hashContent(destination io.Writer, input Input) error {
	file, err := os.Open(input.Path)
	if err != nil {
		return fmt.Errorf("release fingerprint: %w", err)
	}
	defer file.Close()
	written, err := io.Copy(destination, file)
	if err != nil {
		return fmt.Errorf("release fingerprint: reading %s: %w", input.Path, err)
	}
	if written != input.Size {
		return fmt.Errorf("release fingerprint: %s changed size (%d bytes, listed as %d)", input.Path, written, input.Size)
	}
	return nil
}
