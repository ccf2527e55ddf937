package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	dErrors "kycportal/pkg/domain-errors"
)

// Patch addresses one draft section with the stage-local keys to merge.
type Patch struct {
	Section Section         `json:"section"`
	Fields  json.RawMessage `json:"fields"`
}

// Apply merges the keys present in p.Fields into the addressed section and
// returns the new draft. Keys absent from the patch, and every other section,
// are left as they were. On error the input draft is returned unchanged.
func Apply(d Draft, p Patch) (Draft, error) {
	if !IsKnownSection(p.Section) {
		return d, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown section %q", p.Section))
	}
	trimmed := bytes.TrimSpace(p.Fields)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return d, dErrors.New(dErrors.CodeInvalidInput, "fields must be a JSON object")
	}

	next := d.Clone()
	target := next.section(p.Section)
	if target == nil {
		return d, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("section %q is not part of branch %q", p.Section, d.Branch))
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return d, dErrors.Wrap(err, dErrors.CodeInvalidInput, fmt.Sprintf("invalid fields for section %q", p.Section))
	}
	return next, nil
}

// SwitchBranch activates branch b. Branch-specific sections are reset, the
// shared Contact, Bank and Consent sections are kept, and attachments whose
// slot is not wanted by the new pipeline are dropped. Selecting the active
// branch again returns d unchanged.
func SwitchBranch(d Draft, b Branch, keepSlot func(Slot) bool) Draft {
	if d.Branch == b {
		return d
	}
	next := Draft{
		Branch:      b,
		Contact:     d.Contact,
		Bank:        d.Bank,
		Consent:     d.Consent,
		Attachments: map[Slot]Attachment{},
	}
	switch {
	case b.IsIndividual():
		next.Person = &PersonalDetails{}
	case b.IsNonIndividual():
		next.Entity = &EntityDetails{}
	case b.IsDirectLender():
		next.Lender = &LenderDetails{}
		next.Criteria = &LendingCriteria{}
	}
	for slot, att := range d.Attachments {
		if keepSlot != nil && keepSlot(slot) {
			next.Attachments[slot] = att
		}
	}
	return next
}

// SelectFile places a new handle in slot. Any encoded form of the previous
// handle is discarded in the same step.
func SelectFile(d Draft, slot Slot, f File) Draft {
	next := d.Clone()
	next.Attachments[slot] = Attachment{Slot: slot, File: f}
	return next
}

// RemoveFile empties slot.
func RemoveFile(d Draft, slot Slot) Draft {
	next := d.Clone()
	delete(next.Attachments, slot)
	return next
}

// SetEncoded records the encoded form of the handle currently in slot. It
// fails when the slot now holds a different handle, so an encoding that
// finished after a replacement is never attached to the new file.
func SetEncoded(d Draft, slot Slot, fileID, encoded, fingerprint string) (Draft, error) {
	att, ok := d.Attachments[slot]
	if !ok || att.File == nil {
		return d, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("slot %q has no file", slot))
	}
	if att.File.ID() != fileID {
		return d, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("slot %q was replaced during encoding", slot))
	}
	next := d.Clone()
	att.Encoded = encoded
	att.Fingerprint = fingerprint
	next.Attachments[slot] = att
	return next, nil
}
