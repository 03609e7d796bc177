package cartridge

import "crypto/sha256"

// Rom is the immutable, parsed cartridge: header fields plus the raw
// image bytes. The image is retained so MBCs can map banks out of it
// and so save-states can bind themselves to its hash.
type Rom struct {
	Header *Header
	Data   []byte
}

// NewRom parses header and retains data. The caller decides whether to
// treat a non-nil validation error as fatal (HeaderLenient config).
func NewRom(data []byte) (*Rom, error) {
	header, err := ParseHeader(data)
	if header == nil {
		return nil, err
	}
	return &Rom{Header: header, Data: data}, err
}

// Hash returns the SHA-256 of the ROM's raw bytes, used to bind
// save-states to the cartridge that produced them.
func (r *Rom) Hash() [32]byte {
	return sha256.Sum256(r.Data)
}
