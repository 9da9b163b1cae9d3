package machine

import "strings"

const (
	// CreatedTag marks every droplet created by this tool.
	CreatedTag = "machine-created"

	// TypeTagPrefix prefixes the tag that carries a droplet's machine type.
	TypeTagPrefix = "machine-type-"
)

// Tags is the provider's opaque tag set. The accessors below are the only
// place that knows how metadata is encoded into it.
type Tags []string

// Has reports whether tag is present.
func (t Tags) Has(tag string) bool {
	for _, s := range t {
		if s == tag {
			return true
		}
	}
	return false
}

// IsCreated reports whether the droplet was created by this tool.
func (t Tags) IsCreated() bool {
	return t.Has(CreatedTag)
}

// Type returns the machine type from the first tag carrying TypeTagPrefix,
// or "" if there is none.
func (t Tags) Type() string {
	for _, s := range t {
		if typ, ok := strings.CutPrefix(s, TypeTagPrefix); ok {
			return typ
		}
	}
	return ""
}

// HasType reports whether the tags mark the droplet as machine type typ.
func (t Tags) HasType(typ string) bool {
	return t.Has(TypeTag(typ))
}

// TypeTag returns the tag that encodes machine type typ.
func TypeTag(typ string) string {
	return TypeTagPrefix + typ
}

// CreationTags returns the tags a new droplet of type typ is created with:
// the sentinel, the type tag, then any extra tags. Empty and duplicate
// tags are skipped.
func CreationTags(typ string, extra ...string) Tags {
	tags := Tags{CreatedTag}
	if typ != "" {
		tags = append(tags, TypeTag(typ))
	}
	for _, e := range extra {
		if e == "" || tags.Has(e) {
			continue
		}
		tags = append(tags, e)
	}
	return tags
}
