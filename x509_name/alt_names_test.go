package x509_name

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/nuts-foundation/go-x509parser/asn1_der"
)

type altNameEntry struct {
	tag         uint8
	data        []byte
	constructed bool
	universal   bool
}

func buildAltNames(t *testing.T, entries ...altNameEntry) []byte {
	t.Helper()
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		for _, entry := range entries {
			tag := cryptobyte_asn1.Tag(entry.tag)
			if !entry.universal {
				tag = tag.ContextSpecific()
			}
			if entry.constructed {
				tag = tag.Constructed()
			}
			data := entry.data
			b.AddASN1(tag, func(b *cryptobyte.Builder) {
				b.AddBytes(data)
			})
		}
	})
	der, err := b.Bytes()
	require.NoError(t, err)
	return der
}

func TestParseAltNames(t *testing.T) {
	der := buildAltNames(t,
		altNameEntry{tag: 1, data: []byte("ops@example.com")},
		altNameEntry{tag: 2, data: []byte("example.com")},
		altNameEntry{tag: 6, data: []byte("https://example.com")},
		altNameEntry{tag: 7, data: []byte{192, 0, 2, 10}},
		altNameEntry{tag: 7, data: make([]byte, 16)},
	)

	p := asn1_der.NewParser(der)
	alt, err := ParseAltNames(p)
	require.NoError(t, err)
	require.True(t, p.End())

	// Insertion order is preserved.
	require.Equal(t, 5, alt.Len())
	entries := alt.All()
	assert.Equal(t, AltNameEmail, entries[0].Type)
	assert.Equal(t, []byte("ops@example.com"), entries[0].Data)
	assert.Equal(t, AltNameDNS, entries[1].Type)
	assert.Equal(t, AltNameURI, entries[2].Type)
	assert.Equal(t, AltNameIP, entries[3].Type)
	assert.Equal(t, AltNameIP, entries[4].Type)

	assert.Equal(t, "DNS:example.com", entries[1].String())
	assert.Equal(t, "IP:192.0.2.10", entries[3].String())
}

func TestParseAltNamesEmpty(t *testing.T) {
	p := asn1_der.NewParser(buildAltNames(t))
	_, err := ParseAltNames(p)
	assert.ErrorIs(t, err, asn1_der.ErrInvalid)
}

func TestParseAltNamesValidation(t *testing.T) {
	testCases := []struct {
		name  string
		entry altNameEntry
		errIs error
	}{
		{name: "EmptyEmail", entry: altNameEntry{tag: 1}, errIs: asn1_der.ErrInvalid},
		{name: "EmptyDNS", entry: altNameEntry{tag: 2}, errIs: asn1_der.ErrInvalid},
		{name: "DNSSingleSpace", entry: altNameEntry{tag: 2, data: []byte{' '}}, errIs: asn1_der.ErrInvalid},
		{name: "DNSSingleByte", entry: altNameEntry{tag: 2, data: []byte{'a'}}},
		{name: "EmptyURI", entry: altNameEntry{tag: 6}, errIs: asn1_der.ErrInvalid},
		{name: "IPTooShort", entry: altNameEntry{tag: 7, data: []byte{192, 0, 2}}, errIs: asn1_der.ErrInvalid},
		{name: "IPFiveBytes", entry: altNameEntry{tag: 7, data: []byte{192, 0, 2, 10, 1}}, errIs: asn1_der.ErrInvalid},
		{name: "IPv4", entry: altNameEntry{tag: 7, data: []byte{192, 0, 2, 10}}},
		{name: "IPv6", entry: altNameEntry{tag: 7, data: make([]byte, 16)}},
		{name: "OtherName", entry: altNameEntry{tag: 0, data: []byte{0x05, 0x00}}, errIs: asn1_der.ErrUnsupported},
		{name: "OtherNameConstructed", entry: altNameEntry{tag: 0, data: []byte{0x05, 0x00}, constructed: true}, errIs: asn1_der.ErrUnsupported},
		{name: "X400Address", entry: altNameEntry{tag: 3, data: []byte{0x05, 0x00}}, errIs: asn1_der.ErrUnsupported},
		{name: "DirectoryName", entry: altNameEntry{tag: 4, data: []byte{0x05, 0x00}, constructed: true}, errIs: asn1_der.ErrUnsupported},
		{name: "EDIPartyName", entry: altNameEntry{tag: 5, data: []byte{0x05, 0x00}}, errIs: asn1_der.ErrUnsupported},
		{name: "RegisteredID", entry: altNameEntry{tag: 8, data: []byte{0x05, 0x00}}, errIs: asn1_der.ErrUnsupported},
		{name: "ConstructedEmail", entry: altNameEntry{tag: 1, data: []byte{0x0c, 0x01, 'a'}, constructed: true}, errIs: asn1_der.ErrInvalid},
		{name: "UnknownTag", entry: altNameEntry{tag: 9, data: []byte("x")}, errIs: asn1_der.ErrInvalid},
		{name: "WrongClass", entry: altNameEntry{tag: 12, data: []byte("x"), universal: true}, errIs: asn1_der.ErrInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := asn1_der.NewParser(buildAltNames(t, tc.entry))
			alt, err := ParseAltNames(p)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, alt.Len())
		})
	}
}

func TestParseAltNamesTooManyEntries(t *testing.T) {
	entries := make([]altNameEntry, MaxAltNames+1)
	for i := range entries {
		entries[i] = altNameEntry{tag: 2, data: []byte("example.com")}
	}

	p := asn1_der.NewParser(buildAltNames(t, entries...))
	_, err := ParseAltNames(p)
	assert.ErrorIs(t, err, asn1_der.ErrMemory)
}

func TestParseAltNamesAtCapacity(t *testing.T) {
	entries := make([]altNameEntry, MaxAltNames)
	for i := range entries {
		entries[i] = altNameEntry{tag: 2, data: []byte("example.com")}
	}

	p := asn1_der.NewParser(buildAltNames(t, entries...))
	alt, err := ParseAltNames(p)
	require.NoError(t, err)
	assert.Equal(t, MaxAltNames, alt.Len())
}

func TestParseAltNamesNotASequence(t *testing.T) {
	// SET instead of SEQUENCE
	p := asn1_der.NewParser([]byte{0x31, 0x00})
	_, err := ParseAltNames(p)
	assert.ErrorIs(t, err, asn1_der.ErrInvalid)
}
