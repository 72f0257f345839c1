package asn1_der

import (
	"fmt"
)

// Class of a token, see X.690 11/2008 item 8.1.2.2.
type Class uint8

const (
	ClassUniversal   Class = 0
	ClassApplication Class = 1
	ClassContext     Class = 2
	ClassPrivate     Class = 3
)

func (c Class) String() string {
	switch c {
	case ClassUniversal:
		return "UNIVERSAL"
	case ClassApplication:
		return "APPLICATION"
	case ClassContext:
		return "CONTEXT"
	case ClassPrivate:
		return "PRIVATE"
	default:
		return fmt.Sprintf("CLASS(%d)", uint8(c))
	}
}

// Tag is the tag number of a token, without class and encoding bits.
type Tag uint8

// Universal tags used by X.509.
const (
	TagBool            Tag = 1
	TagInt             Tag = 2
	TagBitString       Tag = 3
	TagOctetString     Tag = 4
	TagNull            Tag = 5
	TagOID             Tag = 6
	TagUTF8String      Tag = 12
	TagSequence        Tag = 16
	TagSet             Tag = 17
	TagPrintableString Tag = 19
	TagT61String       Tag = 20
	TagIA5String       Tag = 22
	TagUTCTime         Tag = 23
	TagGeneralizedTime Tag = 24
	TagVisibleString   Tag = 26
)

// Token is one tag-length-value element emitted by a Parser. Data is a
// non-owning view into the buffer the Parser was created with and stays valid
// for the lifetime of that buffer.
type Token struct {
	// Class of the token.
	Class Class
	// Tag number of the token.
	Tag Tag
	// Constructed is true if the token contains nested elements.
	Constructed bool
	// Data contained in the token, without the header.
	Data []byte

	// raw is the whole element including the header.
	raw []byte
}

// Length returns the number of content bytes.
func (t Token) Length() int {
	return len(t.Data)
}

// Raw returns the whole encoded element, including its header.
func (t Token) Raw() []byte {
	return t.raw
}

// Is reports whether class, tag and encoding all match the token.
func (t Token) Is(class Class, tag Tag, constructed bool) bool {
	return t.Class == class && t.Tag == tag && t.Constructed == constructed
}

// IsSequence reports whether the token is a constructed SEQUENCE.
func (t Token) IsSequence() bool {
	return t.Is(ClassUniversal, TagSequence, true)
}

// IsSet reports whether the token is a constructed SET.
func (t Token) IsSet() bool {
	return t.Is(ClassUniversal, TagSet, true)
}

// IsOID reports whether the token is an object identifier.
func (t Token) IsOID() bool {
	return t.Is(ClassUniversal, TagOID, false)
}

// IsInt reports whether the token is an integer.
func (t Token) IsInt() bool {
	return t.Is(ClassUniversal, TagInt, false)
}

// IsBool reports whether the token is a boolean.
func (t Token) IsBool() bool {
	return t.Is(ClassUniversal, TagBool, false)
}

// IsBitString reports whether the token is a bitstring.
func (t Token) IsBitString() bool {
	return t.Is(ClassUniversal, TagBitString, false)
}

// IsOctetString reports whether the token is an octetstring.
func (t Token) IsOctetString() bool {
	return t.Is(ClassUniversal, TagOctetString, false)
}

// IsNull reports whether the token is a NULL value.
func (t Token) IsNull() bool {
	return t.Is(ClassUniversal, TagNull, false)
}

// IsString reports whether the token is one of the string types allowed for
// X.509 attribute values.
func (t Token) IsString() bool {
	if t.Class != ClassUniversal || t.Constructed {
		return false
	}
	switch t.Tag {
	case TagUTF8String, TagPrintableString, TagT61String, TagIA5String, TagVisibleString:
		return true
	}
	return false
}

// IsTime reports whether the token is a UTCTime or GeneralizedTime value.
func (t Token) IsTime() bool {
	if t.Class != ClassUniversal || t.Constructed {
		return false
	}
	return t.Tag == TagUTCTime || t.Tag == TagGeneralizedTime
}

// Int decodes the token as a signed integer. It returns an error if the
// token is not a minimally-encoded integer, or if the value does not fit in
// an int64.
func (t Token) Int() (int64, error) {
	if !t.IsInt() {
		return 0, fmt.Errorf("%w: token is not an integer", ErrInvalid)
	}
	if len(t.Data) == 0 {
		return 0, fmt.Errorf("%w: empty integer", ErrMalformed)
	}
	if len(t.Data) > 1 {
		// Leading 9 identical bits mean a non-minimal encoding.
		if (t.Data[0] == 0x00 && t.Data[1]&0x80 == 0) ||
			(t.Data[0] == 0xff && t.Data[1]&0x80 != 0) {
			return 0, fmt.Errorf("%w: non-minimal integer encoding", ErrMalformed)
		}
	}
	if len(t.Data) > 8 {
		return 0, fmt.Errorf("%w: integer larger than 64 bits", ErrMemory)
	}
	value := int64(0)
	if t.Data[0]&0x80 != 0 {
		value = -1
	}
	for _, b := range t.Data {
		value = value<<8 | int64(b)
	}
	return value, nil
}

// String formats the token's type, e.g. "UNIVERSAL 16 (constructed)".
func (t Token) String() string {
	encoding := "primitive"
	if t.Constructed {
		encoding = "constructed"
	}
	return fmt.Sprintf("%s %d (%s)", t.Class, t.Tag, encoding)
}
