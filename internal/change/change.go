// Package change implements spec component C2: classifying discovered
// files as added / modified / removed relative to the prior index, using
// the mtime-then-hash rule from spec §4.2.
package change

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
)

// Prior describes what the store already knows about one file. Mtime is
// unix seconds, matching model.File's stored granularity.
type Prior struct {
	Mtime       int64
	ContentHash string
}

// Set is the classification result for one discovery pass.
type Set struct {
	Added    []string
	Modified []string
	Removed  []string
	Unchanged []string
}

// Detect classifies discovered against the prior file table. prior is
// keyed by root-relative path; the mtime screen of spec §4.2 runs at the
// one-second granularity of Prior.Mtime (see below).
func Detect(root string, discovered []string, prior map[string]Prior) (Set, error) {
	var set Set

	current := make(map[string]bool, len(discovered))
	for _, p := range discovered {
		current[p] = true
		old, existed := prior[p]
		if !existed {
			set.Added = append(set.Added, p)
			continue
		}

		mtime, err := statMtime(root, p)
		if err != nil {
			// Unreadable now; treat as removed — the pipeline will also
			// fail to read it during extraction and count it separately.
			set.Removed = append(set.Removed, p)
			continue
		}

		// mtime is stored with one-second granularity, so the ">=1ms"
		// screen from spec §4.2 collapses to "any observed second delta".
		if mtime == old.Mtime {
			set.Unchanged = append(set.Unchanged, p)
			continue
		}

		hash, err := hashFile(root, p)
		if err != nil {
			set.Removed = append(set.Removed, p)
			continue
		}
		if hash == old.ContentHash {
			set.Unchanged = append(set.Unchanged, p)
		} else {
			set.Modified = append(set.Modified, p)
		}
	}

	for p := range prior {
		if !current[p] {
			set.Removed = append(set.Removed, p)
		}
	}

	return set, nil
}

func statMtime(root, relPath string) (int64, error) {
	info, err := os.Stat(filepath.Join(root, relPath))
	if err != nil {
		return 0, err
	}
	return info.ModTime().Unix(), nil
}

// HashFile computes the hex SHA-256 of a file's bytes.
func HashFile(root, relPath string) (string, error) {
	return hashFile(root, relPath)
}

func hashFile(root, relPath string) (string, error) {
	f, err := os.Open(filepath.Join(root, relPath))
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
