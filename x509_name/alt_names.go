package x509_name

import (
	"fmt"
	"net"

	"github.com/nuts-foundation/go-x509parser/asn1_der"
)

// MaxAltNames is the maximum number of entries in an AltNames record.
// Decoding more of them fails with asn1_der.ErrMemory.
const MaxAltNames = 16

// AltNameType is the context-specific tag of a GeneralName entry, as
// defined in RFC5280 4.2.1.6.
type AltNameType uint8

const (
	AltNameOtherName     AltNameType = 0
	AltNameEmail         AltNameType = 1 // rfc822Name
	AltNameDNS           AltNameType = 2
	AltNameX400Address   AltNameType = 3
	AltNameDirectoryName AltNameType = 4
	AltNameEDIPartyName  AltNameType = 5
	AltNameURI           AltNameType = 6
	AltNameIP            AltNameType = 7
	AltNameRegisteredID  AltNameType = 8
)

func (t AltNameType) String() string {
	switch t {
	case AltNameOtherName:
		return "otherName"
	case AltNameEmail:
		return "email"
	case AltNameDNS:
		return "DNS"
	case AltNameX400Address:
		return "x400Address"
	case AltNameDirectoryName:
		return "directoryName"
	case AltNameEDIPartyName:
		return "ediPartyName"
	case AltNameURI:
		return "URI"
	case AltNameIP:
		return "IP"
	case AltNameRegisteredID:
		return "registeredID"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// AltName is one alternative name entry. Data is a non-owning view into the
// buffer the entry was parsed from; it has been validated only as far as
// ParseAltNames documents, never copied or normalized.
type AltName struct {
	Type AltNameType
	Data []byte
}

// String formats the entry for display, e.g. "DNS:example.com".
func (a AltName) String() string {
	if a.Type == AltNameIP {
		return fmt.Sprintf("%s:%s", a.Type, net.IP(a.Data))
	}
	return fmt.Sprintf("%s:%s", a.Type, a.Data)
}

// AltNames is a bounded sequence of alternative name entries, in the order
// the certificate encoded them.
type AltNames struct {
	names [MaxAltNames]AltName
	num   int
}

// Len returns the number of entries.
func (a *AltNames) Len() int {
	return a.num
}

// All returns a view of the entries. The result must not be modified.
func (a *AltNames) All() []AltName {
	return a.names[:a.num]
}

// ParseAltNames parses a subjectAltName or issuerAltName extension value: a
// SEQUENCE of context-tagged GeneralName entries, which must hold at least
// one entry.
//
// Entries are validated per type: email, DNS and URI entries must be
// non-empty, a DNS entry must not be the single byte ' ', and an IP entry
// must be exactly 4 or 16 bytes. otherName, x400Address, directoryName,
// ediPartyName and registeredID entries are recognized and reported with
// asn1_der.ErrUnsupported; any other tag fails with asn1_der.ErrInvalid.
// No further syntax checking is done on URIs.
func ParseAltNames(p *asn1_der.Parser) (AltNames, error) {
	var alt AltNames

	if err := p.PushSequence(); err != nil {
		return AltNames{}, err
	}

	// Alternative names must contain at least one name.
	if p.Eof() {
		return AltNames{}, fmt.Errorf("%w: empty alternative names", asn1_der.ErrInvalid)
	}

	for !p.Eof() && alt.num < MaxAltNames {
		token, err := p.Next()
		if err != nil {
			return AltNames{}, err
		}

		if token.Class != asn1_der.ClassContext {
			return AltNames{}, fmt.Errorf("%w: alternative name must be context-specific, have %s",
				asn1_der.ErrInvalid, token)
		}

		switch AltNameType(token.Tag) {
		case AltNameEmail:
			if token.Length() == 0 {
				return AltNames{}, fmt.Errorf("%w: empty email entry", asn1_der.ErrInvalid)
			}
		case AltNameDNS:
			if token.Length() == 0 {
				return AltNames{}, fmt.Errorf("%w: empty DNS entry", asn1_der.ErrInvalid)
			}
			if token.Length() == 1 && token.Data[0] == ' ' {
				return AltNames{}, fmt.Errorf("%w: DNS entry is a single space", asn1_der.ErrInvalid)
			}
		case AltNameURI:
			if token.Length() == 0 {
				return AltNames{}, fmt.Errorf("%w: empty URI entry", asn1_der.ErrInvalid)
			}
		case AltNameIP:
			if token.Length() != 4 && token.Length() != 16 {
				return AltNames{}, fmt.Errorf("%w: IP entry must be 4 or 16 bytes, have %d",
					asn1_der.ErrInvalid, token.Length())
			}
		case AltNameOtherName, AltNameX400Address, AltNameDirectoryName,
			AltNameEDIPartyName, AltNameRegisteredID:
			return AltNames{}, fmt.Errorf("%w: %s entry", asn1_der.ErrUnsupported, AltNameType(token.Tag))
		default:
			return AltNames{}, fmt.Errorf("%w: unknown alternative name %s", asn1_der.ErrInvalid, token)
		}

		// Some of the types above use constructed encoding; this decoder
		// only handles primitive entries.
		if token.Constructed {
			return AltNames{}, fmt.Errorf("%w: constructed alternative name entry", asn1_der.ErrInvalid)
		}

		alt.names[alt.num] = AltName{Type: AltNameType(token.Tag), Data: token.Data}
		alt.num++
	}

	if !p.Eof() {
		return AltNames{}, fmt.Errorf("%w: more than %d alternative names", asn1_der.ErrMemory, MaxAltNames)
	}

	return alt, p.Pop()
}
