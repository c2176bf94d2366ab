// Packets, PHY transceivers and the shared spectrum channel
package radio

// Tag is metadata carried with a packet from the sender to the receiver callback.
// Tags never change the on-air size of the packet.
type Tag interface {
	TagName() string
}

// Packet is an opaque payload of Size bytes plus its tags.
type Packet struct {
	ID   uint64
	Size int
	tags []Tag
}

// NewPacket returns an untagged packet of size bytes.
func NewPacket(size int) Packet {
	return Packet{Size: size}
}

// AddTag attaches t, replacing an existing tag of the same name.
func (p *Packet) AddTag(t Tag) {
	for i, existing := range p.tags {
		if existing.TagName() == t.TagName() {
			p.tags[i] = t
			return
		}
	}
	p.tags = append(p.tags, t)
}

// PeekTag returns the tag called name, if any.
func (p Packet) PeekTag(name string) (Tag, bool) {
	for _, t := range p.tags {
		if t.TagName() == name {
			return t, true
		}
	}
	return nil, false
}

// Tags returns a copy of the attached tags.
func (p Packet) Tags() []Tag {
	out := make([]Tag, len(p.tags))
	copy(out, p.tags)
	return out
}
