package asn1_der

import (
	encoding_asn1 "encoding/asn1"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/cryptobyte"
)

// MaxOIDArcs is the maximum number of arcs in an OID. Every attribute type
// and algorithm identifier encountered in X.509 certificates in the wild
// fits in this limit.
const MaxOIDArcs = 12

// OID is a decoded object identifier: an ordered sequence of non-negative
// integer arcs. It is immutable once decoded and carries its own storage, so
// it stays valid after the buffer it was decoded from is gone.
type OID struct {
	arcs [MaxOIDArcs]uint32
	num  int
}

// NewOID builds an OID from its arcs. It returns an error if there are more
// arcs than MaxOIDArcs.
func NewOID(arcs ...uint32) (OID, error) {
	var oid OID
	if len(arcs) > MaxOIDArcs {
		return OID{}, fmt.Errorf("%w: OID with more than %d arcs", ErrMemory, MaxOIDArcs)
	}
	oid.num = copy(oid.arcs[:], arcs)
	return oid, nil
}

// MustNewOID is NewOID for static tables and tests; it panics on error.
func MustNewOID(arcs ...uint32) OID {
	oid, err := NewOID(arcs...)
	if err != nil {
		panic(err)
	}
	return oid
}

// OID decodes the token as an object identifier.
func (t Token) OID() (OID, error) {
	if !t.IsOID() {
		return OID{}, fmt.Errorf("%w: token is not an OID", ErrInvalid)
	}
	raw := cryptobyte.String(t.raw)
	var decoded encoding_asn1.ObjectIdentifier
	if !raw.ReadASN1ObjectIdentifier(&decoded) {
		return OID{}, fmt.Errorf("%w: badly encoded OID", ErrMalformed)
	}
	var oid OID
	if len(decoded) > MaxOIDArcs {
		return OID{}, fmt.Errorf("%w: OID with more than %d arcs", ErrMemory, MaxOIDArcs)
	}
	for i, arc := range decoded {
		oid.arcs[i] = uint32(arc)
	}
	oid.num = len(decoded)
	return oid, nil
}

// Arcs returns a view of the OID's arcs. The result must not be modified.
func (o OID) Arcs() []uint32 {
	return o.arcs[:o.num]
}

// Cmp compares two OIDs according to a lexical ordering, e.g.
//
//	1.2
//	1.2.1
//	1.3
//
// It returns 0 if both OIDs are equal, a negative value if o is less than
// other and a positive value otherwise. OIDs decoded from bit-identical
// encodings compare equal, and the order is transitive.
func (o OID) Cmp(other OID) int {
	num := o.num
	if other.num < num {
		num = other.num
	}
	for i := 0; i < num; i++ {
		if o.arcs[i] != other.arcs[i] {
			if o.arcs[i] < other.arcs[i] {
				return -1
			}
			return 1
		}
	}
	return o.num - other.num
}

// Equal reports whether two OIDs have identical arcs.
func (o OID) Equal(other OID) bool {
	return o.Cmp(other) == 0
}

// String formats the OID in the usual dotted notation.
func (o OID) String() string {
	var b strings.Builder
	for i := 0; i < o.num; i++ {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(uint64(o.arcs[i]), 10))
	}
	return b.String()
}
