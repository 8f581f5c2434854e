package driver

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 sum.
type Digest [32]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// CacheKey lists everything a generated page depends on.
type CacheKey struct {
	Backend    string
	Package    string
	ViewImport string
	DemoTag    string
	Validate   bool
	Meta       bool // front matter enabled
	Page       string
	Source     string // document path as written in the output header
	Content    Digest // hash of the normalized document
}

// Digest: H(schema || len(field) || field ...). Длины полей исключают
// коллизии вида ("ab","c") против ("a","bc").
func (k CacheKey) Digest() Digest {
	h := blake3.New()
	var buf [8]byte
	binary.LittleEndian.PutUint16(buf[:2], cacheSchemaVersion)
	_, _ = h.Write(buf[:2])
	for _, field := range []string{k.Backend, k.Package, k.ViewImport, k.DemoTag, k.Page, k.Source} {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(field)))
		_, _ = h.Write(buf[:])
		_, _ = h.Write([]byte(field))
	}
	var flags byte
	if k.Validate {
		flags |= 1
	}
	if k.Meta {
		flags |= 2
	}
	_, _ = h.Write([]byte{flags})
	_, _ = h.Write(k.Content[:])
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
