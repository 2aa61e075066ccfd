package imageprocessor

import (
	"encoding/base64"
	"encoding/binary"
)

// Fingerprint is a 64-bit perceptual hash. Its String form is the key stored
// in the database; two images are duplicates iff the strings are equal.
type Fingerprint struct {
	bits uint64
}

// NewFingerprint wraps raw hash bits
func NewFingerprint(hash uint64) Fingerprint {
	return Fingerprint{bits: hash}
}

// String encodes the hash as base64 of its big-endian bytes
func (f Fingerprint) String() string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], f.bits)
	return base64.StdEncoding.EncodeToString(buf[:])
}
