package wizard

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"golang.org/x/crypto/blake2b"

	"kycportal/internal/onboarding/models"
)

// stageFingerprint hashes the values a stage is responsible for: its fields
// (trimmed when strings) and the handle IDs of its slots. A stage whose
// fingerprint differs from the one recorded when it passed is dirty.
func stageFingerprint(stage models.Stage, d models.Draft) string {
	values := make([]any, 0, len(stage.Fields)+len(stage.Files))
	for _, f := range stage.Fields {
		v, ok := d.Value(f.Section, f.Name)
		if !ok {
			values = append(values, nil)
			continue
		}
		if s, isString := v.(string); isString {
			v = strings.TrimSpace(s)
		}
		values = append(values, v)
	}
	for _, f := range stage.Files {
		var handle string
		if att, ok := d.Attachments[f.Slot]; ok && att.File != nil {
			handle = att.File.ID()
		}
		values = append(values, handle)
	}
	// Values are strings, bools, string slices or nil; Marshal cannot fail.
	data, _ := json.Marshal(values)
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
