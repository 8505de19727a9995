// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package backup retains timestamped copies of files before
// destructive operations so manual recovery stays possible. Backups
// are zstd-compressed and named <base>.<YYYYMMDD_HHMMSS>.bak.zst.
package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/bureau-foundation/lattice/lib/atomicfile"
)

// Shared codecs: zstd encoders are expensive to construct, and
// EncodeAll/DecodeAll on a nil-stream instance are safe for
// concurrent use.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// Create copies the current bytes of path into dir as a compressed,
// timestamped backup. Returns the backup path, or "" when path does
// not exist yet (nothing to preserve).
func Create(path, dir string, now time.Time) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("backup: reading %s: %w", path, err)
	}

	base := filepath.Base(path)
	stamp := now.Format("20060102_150405")
	dst := filepath.Join(dir, fmt.Sprintf("%s.%s.bak.zst", base, stamp))
	for n := 2; ; n++ {
		if _, err := os.Stat(dst); errors.Is(err, fs.ErrNotExist) {
			break
		}
		dst = filepath.Join(dir, fmt.Sprintf("%s.%s-%d.bak.zst", base, stamp, n))
	}

	compressed := zstdEncoder.EncodeAll(data, nil)
	if err := atomicfile.Write(dst, compressed, 0o644); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	return dst, nil
}

// Read decompresses a backup written by Create.
func Read(path string) ([]byte, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("backup: reading %s: %w", path, err)
	}
	data, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("backup: decompressing %s: %w", path, err)
	}
	return data, nil
}

// List returns the backups of the named file in dir, newest first.
func List(dir, base string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("backup: reading %s: %w", dir, err)
	}
	var paths []string
	prefix := base + "."
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".bak.zst") {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	// Timestamps sort lexically, so reverse name order is newest
	// first.
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}
