// Package x509_name decodes the identity fields of X.509 certificates —
// Distinguished Names and Subject/Issuer Alternative Names — from DER into
// bounded, comparable in-memory records.
//
// Decoded records hold views into the buffer they were parsed from and are
// valid only as long as that buffer. Decoding is pure computation with hard
// capacity limits and no allocation of buffer memory, so malformed or
// oversized input fails with an error instead of growing memory.
package x509_name

import (
	"fmt"

	"github.com/nuts-foundation/go-x509parser/asn1_der"
)

// MaxRDNs is the maximum number of relative distinguished names in a Name.
// Decoding a name with more of them fails with asn1_der.ErrMemory.
const MaxRDNs = 16

// RDN is a single relative distinguished name: one attribute type and its
// value. The value token references the buffer the name was parsed from.
type RDN struct {
	Type  asn1_der.OID
	Value asn1_der.Token
}

// Name is a bounded sequence of RDNs. After decoding, the RDNs are sorted
// ascending by attribute type so that comparison is independent of the order
// the certificate encoded them in.
type Name struct {
	rdns [MaxRDNs]RDN
	num  int
}

// Len returns the number of RDNs in the name.
func (n *Name) Len() int {
	return n.num
}

// RDNs returns a view of the name's RDNs. The result must not be modified.
func (n *Name) RDNs() []RDN {
	return n.rdns[:n.num]
}

// ParseName parses an X.509 Name, which must contain at least one RDN.
//
// A Name is structured as follows:
//
//	SEQUENCE OF
//	  SET OF (one or more) (V3 with subjectAltName: zero) (= RDN)
//	    SEQUENCE (= AVA)
//	      OID Type
//	      ANY Value
//
// On success the parser has advanced past the whole Name. On failure the
// parser position is unspecified and must not be reused without
// re-synchronizing.
func ParseName(p *asn1_der.Parser) (Name, error) {
	name, err := ParseOptionalName(p)
	if err != nil {
		return Name{}, err
	}
	if name.num == 0 {
		return Name{}, fmt.Errorf("%w: name is empty", asn1_der.ErrInvalid)
	}
	return name, nil
}

// ParseOptionalName parses an X.509 Name, which may be empty. V3
// certificates may carry an empty subject when the subjectAltName extension
// holds the identity.
func ParseOptionalName(p *asn1_der.Parser) (Name, error) {
	var name Name

	if err := p.PushSequence(); err != nil {
		return Name{}, err
	}

	for !p.Eof() && name.num < MaxRDNs {
		// "RelativeDistinguishedName"
		token, err := p.Next()
		if err != nil {
			return Name{}, err
		}
		if !token.IsSet() {
			return Name{}, fmt.Errorf("%w: RDN must be a SET, have %s", asn1_der.ErrInvalid, token)
		}
		if err := p.Push(); err != nil {
			return Name{}, err
		}

		// "AttributeValueAssertion"
		if err := p.PushSequence(); err != nil {
			return Name{}, err
		}

		token, err = p.Next()
		if err != nil {
			return Name{}, err
		}
		if !token.IsOID() {
			return Name{}, fmt.Errorf("%w: attribute type must be an OID, have %s", asn1_der.ErrInvalid, token)
		}
		oid, err := token.OID()
		if err != nil {
			return Name{}, fmt.Errorf("%w: badly encoded attribute type", asn1_der.ErrInvalid)
		}

		token, err = p.Next()
		if err != nil {
			return Name{}, err
		}
		if !token.IsString() {
			return Name{}, fmt.Errorf("%w: attribute value must be a string, have %s", asn1_der.ErrInvalid, token)
		}

		name.rdns[name.num] = RDN{Type: oid, Value: token}
		name.num++

		// End of AVA
		if err := p.Pop(); err != nil {
			return Name{}, err
		}

		// Only one AVA per RDN is supported.
		if !p.Eof() {
			return Name{}, fmt.Errorf("%w: multi-valued RDN", asn1_der.ErrUnsupported)
		}

		// End of RDN
		if err := p.Pop(); err != nil {
			return Name{}, err
		}
	}

	if !p.Eof() {
		return Name{}, fmt.Errorf("%w: name holds more than %d RDNs", asn1_der.ErrMemory, MaxRDNs)
	}

	name.Canonicalize()

	return name, p.Pop()
}

// Canonicalize sorts the name's RDNs ascending by attribute type. The sort
// is stable: RDNs with equal types keep their decode order. DER mandates
// SET values in ascending encoded order, but encoders are not trusted to
// comply; re-sorting here makes Equal independent of the certificate's
// original byte ordering. Canonicalize runs at the end of every successful
// decode and is idempotent.
func (n *Name) Canonicalize() {
	for i := 1; i < n.num; i++ {
		entry := n.rdns[i]
		j := i
		for j > 0 && n.rdns[j-1].Type.Cmp(entry.Type) > 0 {
			n.rdns[j] = n.rdns[j-1]
			j--
		}
		n.rdns[j] = entry
	}
}
