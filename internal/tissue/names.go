package tissue

import (
	"context"
	"strings"

	"wban-jamming-sim/internal/logging"
)

// DefaultOrgan is substituted for unrecognised organ names.
const DefaultOrgan = Heart402

var organNames = [organCount]string{
	SmallIntestine2400:  "small-intestine-2400",
	SmallIntestine916_5: "small-intestine-916.5",
	Fat2400:             "fat-2400",
	Fat402:              "fat-402",
	Skin2400:            "skin-2400",
	Skin863:             "skin-863",
	Skin402:             "skin-402",
	LargeIntestine2400:  "large-intestine-2400",
	SmallIntestine402:   "small-intestine-402",
	Heart2400:           "heart-2400",
	Kidney2400:          "kidney-2400",
	Heart402:            "heart-402",
	Kidney402:           "kidney-402",
}

var organAliases = map[string]Organ{
	"heart": Heart402,
}

// String returns the canonical CLI name, e.g. "heart-402".
func (o Organ) String() string {
	if !o.Valid() {
		return "unknown"
	}
	return organNames[o]
}

// ParseOrgan matches name case-insensitively against the canonical names and aliases.
func ParseOrgan(name string) (Organ, bool) {
	key := strings.ToLower(name)
	if o, ok := organAliases[key]; ok {
		return o, true
	}
	for i, n := range organNames {
		if n == key {
			return Organ(i), true
		}
	}
	return DefaultOrgan, false
}

// ParseOrganOrDefault parses name and falls back to DefaultOrgan with a warning.
func ParseOrganOrDefault(ctx context.Context, name string) Organ {
	o, ok := ParseOrgan(name)
	if !ok {
		logging.FromContext(ctx).Warn("unknown organ option, using default",
			"organ", name, "default", DefaultOrgan.String())
	}
	return o
}

// MarshalText implements encoding.TextMarshaler.
func (o Organ) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
