package export

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// SourceChecksum hashes the input files in order
func SourceChecksum(paths ...string) (string, error) {
	hash := sha256.New()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", p, err)
		}
		_, err = io.Copy(hash, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", p, err)
		}
		// Separator so that moving bytes between files changes the sum
		hash.Write([]byte{0})
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// NeedsRefresh reports whether the export in the manifest's directory must be
// regenerated: the manifest is missing or unreadable, was produced by another
// generator version, or was built from different input files.
func NeedsRefresh(manifestPath, sourceChecksum string) bool {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return true
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return true
	}

	if manifest.GeneratorVersion != GeneratorVersion {
		return true
	}

	return manifest.SourceChecksum == "" || manifest.SourceChecksum != sourceChecksum
}
