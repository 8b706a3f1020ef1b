package cast

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

// Fingerprint returns a stable hash of the cast's canonical YAML encoding. Two
// casts with the same fingerprint evaluate to the same report.
func Fingerprint(def Definition) (string, error) {
	// yaml.v3 writes map keys in sorted order, so the encoding is canonical.
	data, err := yaml.Marshal(def)
	if err != nil {
		return "", fmt.Errorf("failed to encode cast %s: %w", def.Name, err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
