package reconcile

import (
	"slices"
	"strings"

	"kycportal/internal/onboarding/models"
	pstrings "kycportal/pkg/platform/strings"
)

// text trims v and maps the empty string to nil.
func text(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func flag(b bool) *bool {
	return &b
}

func firstOf(values ...string) *string {
	v, ok := pstrings.FirstNonBlank(values...)
	if !ok {
		return nil
	}
	return &v
}

// resolve returns the first non-empty value among the aliases of section.
func resolve(section any, aliases []string) *string {
	for _, name := range aliases {
		v, ok := models.Lookup(section, name)
		if !ok {
			continue
		}
		if s, isString := v.(string); isString {
			if p := text(s); p != nil {
				return p
			}
		}
	}
	return nil
}

// pep compares explicitly: yes/true and no/false are answers, anything else
// is unknown.
func pep(v *string) *bool {
	if v == nil {
		return nil
	}
	switch strings.ToLower(*v) {
	case "yes", "true":
		return flag(true)
	case "no", "false":
		return flag(false)
	}
	return nil
}

func joinName(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func encoded(d models.Draft, slot models.Slot) *string {
	att, ok := d.Attachments[slot]
	if !ok {
		return nil
	}
	return text(att.Encoded)
}

// sortedSlots gives a stable order so the reported missing slot does not
// depend on map iteration.
func sortedSlots(d models.Draft) []models.Slot {
	out := make([]models.Slot, 0, len(d.Attachments))
	for slot := range d.Attachments {
		out = append(out, slot)
	}
	slices.Sort(out)
	return out
}
