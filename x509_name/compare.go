package x509_name

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/nuts-foundation/go-x509parser/asn1_der"
)

// Equal reports whether two canonicalized names contain the same attributes
// with byte-identical values.
func (n *Name) Equal(other *Name) bool {
	return n.Mismatch(other) == ""
}

// Mismatch compares two canonicalized names and returns a diagnostic reason
// for the first difference, or the empty string when the names are equal.
// The reason is advisory only.
//
// Comparison is byte-exact: values are not decoded from their charset and
// case is not folded, so names that differ only in encoding form or letter
// case are reported as unequal. This is a known limitation.
func (n *Name) Mismatch(other *Name) string {
	if n.num != other.num {
		return "differing number of RDNs"
	}

	// Both names are sorted, so attributes can be compared index-wise.
	for i := 0; i < n.num; i++ {
		a := &n.rdns[i]
		b := &other.rdns[i]

		if a.Type.Cmp(b.Type) != 0 {
			return "attribute mismatch"
		}

		if a.Value.Length() != b.Value.Length() {
			return "value length mismatch"
		}

		if !bytes.Equal(a.Value.Data, b.Value.Data) {
			return "value mismatch"
		}
	}

	return ""
}

// attributeNames maps well-known attribute type OIDs to their short names,
// as used in RFC4514 string representations.
var attributeNames = map[string]string{
	"2.5.4.3":                    "CN",
	"2.5.4.5":                    "serialNumber",
	"2.5.4.6":                    "C",
	"2.5.4.7":                    "L",
	"2.5.4.8":                    "ST",
	"2.5.4.9":                    "STREET",
	"2.5.4.10":                   "O",
	"2.5.4.11":                   "OU",
	"0.9.2342.19200300.100.1.1":  "UID",
	"0.9.2342.19200300.100.1.25": "DC",
}

// AttributeName returns the short name for a well-known attribute type, or
// the dotted OID when no short name is registered.
func AttributeName(oid asn1_der.OID) string {
	dotted := oid.String()
	if short, ok := attributeNames[dotted]; ok {
		return short
	}
	return dotted
}

// String formats the name for display, e.g. "CN=example.com, O=Example".
// Attribute types without a well-known short name are printed as dotted
// OIDs. The result is for humans; comparison must use Equal.
func (n *Name) String() string {
	var b strings.Builder
	for i := 0; i < n.num; i++ {
		rdn := &n.rdns[i]
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(AttributeName(rdn.Type))
		b.WriteByte('=')
		fmt.Fprintf(&b, "%s", rdn.Value.Data)
	}
	return b.String()
}
