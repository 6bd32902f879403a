// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestHashFileCRC32(t *testing.T) {
	path := writeFile(t, "check.rar", []byte("123456789"))
	got, err := HashFile(path, CRC32)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if got != "CBF43926" {
		t.Errorf("HashFile(crc32) = %s, want CBF43926", got)
	}
}

func TestHashFileSHA1(t *testing.T) {
	path := writeFile(t, "abc.rar", []byte("abc"))
	got, err := HashFile(path, SHA1)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if want := "A9993E364706816ABA3E25717850C26C9CD0D89D"; got != want {
		t.Errorf("HashFile(sha1) = %s, want %s", got, want)
	}
}

func TestHashFileEmpty(t *testing.T) {
	path := writeFile(t, "empty", nil)
	got, err := HashFile(path, CRC32)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if got != "00000000" {
		t.Errorf("HashFile(empty) = %s, want 00000000", got)
	}
}

func TestHashFileLarge(t *testing.T) {
	// Streaming must agree with hashing the whole buffer at once.
	content := make([]byte, 256*1024)
	for i := range content {
		content[i] = byte(i % 251)
	}
	path := writeFile(t, "large", content)

	got, err := HashFile(path, SHA1)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	want, err := HashReader(strings.NewReader(string(content)), SHA1)
	if err != nil {
		t.Fatalf("HashReader: %v", err)
	}
	if got != want {
		t.Errorf("HashFile(large) = %s, want %s", got, want)
	}
}

func TestHashFileNonexistent(t *testing.T) {
	if _, err := HashFile(filepath.Join(t.TempDir(), "missing"), CRC32); err == nil {
		t.Fatal("HashFile should fail for nonexistent file")
	}
}

func TestHashFileUnknownAlgorithm(t *testing.T) {
	path := writeFile(t, "file", []byte("x"))
	if _, err := HashFile(path, Algorithm("md5")); err == nil {
		t.Fatal("HashFile should fail for an unknown algorithm")
	}
}

func TestParseAlgorithm(t *testing.T) {
	if got, err := ParseAlgorithm(" SHA1 "); err != nil || got != SHA1 {
		t.Errorf("ParseAlgorithm(SHA1) = %q, %v", got, err)
	}
	if _, err := ParseAlgorithm("md5"); err == nil {
		t.Error("ParseAlgorithm(md5) should fail")
	}
}

func TestParseDigest(t *testing.T) {
	got, err := ParseDigest(CRC32, "deadbeef")
	if err != nil {
		t.Fatalf("ParseDigest: %v", err)
	}
	if got != "DEADBEEF" {
		t.Errorf("ParseDigest = %s, want DEADBEEF", got)
	}

	tests := []struct {
		name      string
		algorithm Algorithm
		input     string
	}{
		{"not hex", CRC32, "zzzzzzzz"},
		{"too short", CRC32, "abcd"},
		{"crc length for sha1", SHA1, "deadbeef"},
		{"empty", SHA1, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := ParseDigest(test.algorithm, test.input); err == nil {
				t.Errorf("ParseDigest(%s, %q) should fail", test.algorithm, test.input)
			}
		})
	}
}

func TestNewTargetValidation(t *testing.T) {
	if _, err := NewTarget(CRC32, nil); err == nil {
		t.Error("empty target should fail")
	}
	_, err := NewTarget(CRC32, []Entry{{Name: "release.r00", Digest: "123"}})
	if err == nil || !strings.Contains(err.Error(), "release.r00") {
		t.Errorf("invalid digest error = %v, want one naming the file", err)
	}
}

func TestTargetMatchesIsOrderIndependent(t *testing.T) {
	target, err := NewTarget(CRC32, []Entry{
		{Name: "a.rar", Digest: "11111111"},
		{Name: "a.r00", Digest: "22222222"},
		{Name: "a.r01", Digest: "22222222"},
	})
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}

	if !target.Matches([]string{"22222222", "11111111", "22222222"}) {
		t.Error("permuted digests should match")
	}
	if target.Matches([]string{"11111111", "22222222"}) {
		t.Error("missing volume should not match")
	}
	if target.Matches([]string{"11111111", "11111111", "22222222"}) {
		t.Error("wrong multiplicity should not match")
	}
	if !target.Contains("22222222") || target.Contains("33333333") {
		t.Error("Contains disagrees with the entry list")
	}
	if target.Len() != 3 || target.Entries()[1].Name != "a.r00" {
		t.Errorf("Entries = %+v", target.Entries())
	}
}

type fixedHasher map[string]string

func (h fixedHasher) HashFile(path string, _ Algorithm) (string, error) {
	digest, ok := h[filepath.Base(path)]
	if !ok {
		return "", errors.New("unreadable volume")
	}
	return digest, nil
}

func TestVerify(t *testing.T) {
	target, err := NewTarget(CRC32, []Entry{{Digest: "DEADBEEF"}})
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	hasher := fixedHasher{"good.rar": "deadbeef", "bad.rar": "00C0FFEE"}

	verdict, err := Verify(hasher, target, []string{"/out/good.rar"})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !verdict.Matched {
		t.Error("good volume should match")
	}

	verdict, err = Verify(hasher, target, []string{"/out/bad.rar"})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verdict.Matched || verdict.Digests[0] != "00C0FFEE" {
		t.Errorf("bad volume verdict = %+v", verdict)
	}

	verdict, err = Verify(hasher, target, nil)
	if err != nil || verdict.Matched {
		t.Errorf("no volumes verdict = %+v, %v", verdict, err)
	}

	if _, err := Verify(hasher, target, []string{"/out/missing.rar"}); err == nil {
		t.Error("unreadable volume should fail")
	}
}
