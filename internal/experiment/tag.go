// Two-phase jamming experiment over the body-area link
package experiment

import (
	"fmt"

	"wban-jamming-sim/internal/radio"
)

// SourceTag marks a packet as legitimate transmitter or jammer traffic.
type SourceTag uint8

const (
	TX  SourceTag = 1
	JAM SourceTag = 2
)

const sourceTagName = "src"

// TagName implements radio.Tag.
func (t SourceTag) TagName() string { return sourceTagName }

// Valid reports whether t is one of the known sources.
func (t SourceTag) Valid() bool { return t == TX || t == JAM }

func (t SourceTag) String() string {
	switch t {
	case TX:
		return "src=TX"
	case JAM:
		return "src=JAM"
	}
	return fmt.Sprintf("src=%d", uint8(t))
}

// MarshalBinary encodes the tag as a single byte.
func (t SourceTag) MarshalBinary() ([]byte, error) {
	return []byte{byte(t)}, nil
}

// UnmarshalBinary decodes a single-byte tag.
func (t *SourceTag) UnmarshalBinary(b []byte) error {
	if len(b) != 1 {
		return fmt.Errorf("source tag: want 1 byte, got %d", len(b))
	}
	*t = SourceTag(b[0])
	return nil
}

// PeekSourceTag returns the source tag carried by p.
func PeekSourceTag(p radio.Packet) (SourceTag, bool) {
	tag, ok := p.PeekTag(sourceTagName)
	if !ok {
		return 0, false
	}
	st, ok := tag.(SourceTag)
	return st, ok
}

func newPacket(size int, src SourceTag) radio.Packet {
	p := radio.NewPacket(size)
	p.AddTag(src)
	return p
}
