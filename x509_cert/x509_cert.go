// Package x509_cert assembles certificates from DER using the asn1_der
// cursor and the x509_name decoders. It decodes the identity-bearing fields
// of a certificate — names, alternative names, validity, algorithm and key
// material — without validating chains or signatures.
package x509_cert

import (
	"errors"
	"fmt"
	"time"

	"github.com/nuts-foundation/go-x509parser/asn1_der"
	"github.com/nuts-foundation/go-x509parser/x509_name"
)

var (
	subjectAltNameOID = asn1_der.MustNewOID(2, 5, 29, 17)
	issuerAltNameOID  = asn1_der.MustNewOID(2, 5, 29, 18)
)

// Certificate is the decoded form of one X.509 certificate. Byte-slice
// fields are non-owning views into the DER buffer the certificate was
// parsed from. Issuer and Subject are independent values; a certificate may
// carry an empty Subject when the subjectAltName extension holds the
// identity.
type Certificate struct {
	// Version is 0, 1 or 2 for v1, v2 and v3 certificates.
	Version int
	// SerialNumber holds the raw big-endian serial number bytes.
	SerialNumber []byte

	SignatureAlgorithm asn1_der.OID

	Issuer  x509_name.Name
	Subject x509_name.Name

	NotBefore time.Time
	NotAfter  time.Time

	PublicKeyAlgorithm asn1_der.OID
	// PublicKey holds the raw subjectPublicKey bits.
	PublicKey []byte

	// Signature holds the raw signatureValue bits.
	Signature []byte

	// AltNames holds the subjectAltName entries when the extension is
	// present and decodable. A certificate using only alternative name
	// types this library does not implement has HasAltNames false.
	AltNames    x509_name.AltNames
	HasAltNames bool

	// IssuerAltNames holds the issuerAltName entries, under the same rules
	// as AltNames.
	IssuerAltNames    x509_name.AltNames
	HasIssuerAltNames bool
}

// ValidAt reports whether instant falls within the certificate's validity
// interval.
func (c *Certificate) ValidAt(instant time.Time) bool {
	return !instant.Before(c.NotBefore) && !instant.After(c.NotAfter)
}

// ParseCertificate parses one certificate from the cursor:
//
//	Certificate  ::=  SEQUENCE  {
//	  tbsCertificate     TBSCertificate,
//	  signatureAlgorithm AlgorithmIdentifier,
//	  signatureValue     BIT STRING  }
//
// On failure the cursor position is unspecified. Unknown extensions are
// skipped; a subjectAltName or issuerAltName extension that uses only
// unimplemented name types is skipped as well, while one that is malformed
// or over capacity rejects the certificate.
func ParseCertificate(p *asn1_der.Parser) (Certificate, error) {
	var c Certificate

	if err := p.PushSequence(); err != nil {
		return Certificate{}, err
	}

	if err := parseTBSCertificate(p, &c); err != nil {
		return Certificate{}, err
	}

	algorithm, err := parseAlgorithmIdentifier(p)
	if err != nil {
		return Certificate{}, err
	}
	// The outer algorithm must repeat the one inside tbsCertificate.
	if !algorithm.Equal(c.SignatureAlgorithm) {
		return Certificate{}, fmt.Errorf("%w: signature algorithm mismatch", asn1_der.ErrInvalid)
	}

	token, err := p.Next()
	if err != nil {
		return Certificate{}, err
	}
	c.Signature, err = bitstringBytes(token)
	if err != nil {
		return Certificate{}, fmt.Errorf("signatureValue: %w", err)
	}

	return c, p.Pop()
}

func parseTBSCertificate(p *asn1_der.Parser, c *Certificate) error {
	if err := p.PushSequence(); err != nil {
		return err
	}

	// version [0] EXPLICIT INTEGER DEFAULT v1
	token, err := p.Next()
	if err != nil {
		return err
	}
	if token.Is(asn1_der.ClassContext, 0, true) {
		if err := p.Push(); err != nil {
			return err
		}
		token, err = p.Next()
		if err != nil {
			return err
		}
		version, err := token.Int()
		if err != nil {
			return fmt.Errorf("version: %w", err)
		}
		if version < 0 || version > 2 {
			return fmt.Errorf("%w: certificate version %d", asn1_der.ErrUnsupported, version+1)
		}
		c.Version = int(version)
		if err := p.Pop(); err != nil {
			return err
		}
		token, err = p.Next()
		if err != nil {
			return err
		}
	}

	// serialNumber
	if !token.IsInt() {
		return fmt.Errorf("%w: serial number must be an integer, have %s", asn1_der.ErrInvalid, token)
	}
	c.SerialNumber = token.Data

	if c.SignatureAlgorithm, err = parseAlgorithmIdentifier(p); err != nil {
		return err
	}

	if c.Issuer, err = x509_name.ParseName(p); err != nil {
		return fmt.Errorf("issuer: %w", err)
	}

	if err = parseValidity(p, c); err != nil {
		return err
	}

	if c.Subject, err = x509_name.ParseOptionalName(p); err != nil {
		return fmt.Errorf("subject: %w", err)
	}

	if err = parseSubjectPublicKeyInfo(p, c); err != nil {
		return err
	}

	// issuerUniqueID [1], subjectUniqueID [2] and extensions [3]
	for !p.Eof() {
		token, err = p.Next()
		if err != nil {
			return err
		}
		if token.Class != asn1_der.ClassContext {
			return fmt.Errorf("%w: unexpected %s in tbsCertificate", asn1_der.ErrInvalid, token)
		}
		if token.Tag == 3 && token.Constructed {
			if err := parseExtensions(p, c); err != nil {
				return err
			}
		}
		// The deprecated unique identifiers are consumed and ignored.
	}

	return p.Pop()
}

// parseAlgorithmIdentifier decodes the algorithm OID and consumes the
// algorithm-specific parameters without interpreting them.
func parseAlgorithmIdentifier(p *asn1_der.Parser) (asn1_der.OID, error) {
	if err := p.PushSequence(); err != nil {
		return asn1_der.OID{}, err
	}
	token, err := p.Next()
	if err != nil {
		return asn1_der.OID{}, err
	}
	oid, err := token.OID()
	if err != nil {
		return asn1_der.OID{}, fmt.Errorf("algorithm: %w", err)
	}
	for !p.Eof() {
		if _, err := p.Next(); err != nil {
			return asn1_der.OID{}, err
		}
	}
	return oid, p.Pop()
}

func parseValidity(p *asn1_der.Parser, c *Certificate) error {
	if err := p.PushSequence(); err != nil {
		return err
	}
	var err error
	if c.NotBefore, err = parseTime(p); err != nil {
		return fmt.Errorf("notBefore: %w", err)
	}
	if c.NotAfter, err = parseTime(p); err != nil {
		return fmt.Errorf("notAfter: %w", err)
	}
	return p.Pop()
}

func parseTime(p *asn1_der.Parser) (time.Time, error) {
	token, err := p.Next()
	if err != nil {
		return time.Time{}, err
	}
	if !token.IsTime() {
		return time.Time{}, fmt.Errorf("%w: expected a time value, have %s", asn1_der.ErrInvalid, token)
	}
	layout := "060102150405Z0700"
	if token.Tag == asn1_der.TagGeneralizedTime {
		layout = "20060102150405Z0700"
	}
	decoded, err := time.Parse(layout, string(token.Data))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: badly encoded time value", asn1_der.ErrInvalid)
	}
	// UTCTime years 50 through 99 fall in the 1900s (RFC5280 4.1.2.5.1),
	// while time.Parse pivots two-digit years at 69.
	if token.Tag == asn1_der.TagUTCTime && decoded.Year() >= 2050 {
		decoded = decoded.AddDate(-100, 0, 0)
	}
	return decoded, nil
}

func parseSubjectPublicKeyInfo(p *asn1_der.Parser, c *Certificate) error {
	if err := p.PushSequence(); err != nil {
		return err
	}
	var err error
	if c.PublicKeyAlgorithm, err = parseAlgorithmIdentifier(p); err != nil {
		return err
	}
	token, err := p.Next()
	if err != nil {
		return err
	}
	if c.PublicKey, err = bitstringBytes(token); err != nil {
		return fmt.Errorf("subjectPublicKey: %w", err)
	}
	return p.Pop()
}

func parseExtensions(p *asn1_der.Parser, c *Certificate) error {
	// The current token is the [3] EXPLICIT wrapper.
	if err := p.Push(); err != nil {
		return err
	}
	if err := p.PushSequence(); err != nil {
		return err
	}

	for !p.Eof() {
		if err := parseExtension(p, c); err != nil {
			return err
		}
	}

	if err := p.Pop(); err != nil {
		return err
	}
	return p.Pop()
}

func parseExtension(p *asn1_der.Parser, c *Certificate) error {
	if err := p.PushSequence(); err != nil {
		return err
	}

	token, err := p.Next()
	if err != nil {
		return err
	}
	oid, err := token.OID()
	if err != nil {
		return fmt.Errorf("extnID: %w", err)
	}

	token, err = p.Next()
	if err != nil {
		return err
	}
	if token.IsBool() {
		// critical flag; honoring unknown critical extensions is a
		// chain-validation concern outside this library.
		token, err = p.Next()
		if err != nil {
			return err
		}
	}
	if !token.IsOctetString() {
		return fmt.Errorf("%w: extnValue must be an octetstring, have %s", asn1_der.ErrInvalid, token)
	}

	switch {
	case oid.Equal(subjectAltNameOID):
		c.AltNames, c.HasAltNames, err = parseAltNamesValue(token.Data)
	case oid.Equal(issuerAltNameOID):
		c.IssuerAltNames, c.HasIssuerAltNames, err = parseAltNamesValue(token.Data)
	}
	if err != nil {
		return fmt.Errorf("extension %s: %w", oid, err)
	}

	return p.Pop()
}

// parseAltNamesValue decodes an alternative-names extension value. A value
// that only uses name types this library does not implement is reported as
// absent rather than rejecting the certificate.
func parseAltNamesValue(value []byte) (x509_name.AltNames, bool, error) {
	sub := asn1_der.NewParser(value)
	alt, err := x509_name.ParseAltNames(sub)
	if errors.Is(err, asn1_der.ErrUnsupported) {
		return x509_name.AltNames{}, false, nil
	}
	if err != nil {
		return x509_name.AltNames{}, false, err
	}
	if !sub.End() {
		return x509_name.AltNames{}, false, fmt.Errorf("%w: trailing data after alternative names", asn1_der.ErrMalformed)
	}
	return alt, true, nil
}

func bitstringBytes(token asn1_der.Token) ([]byte, error) {
	if !token.IsBitString() {
		return nil, fmt.Errorf("%w: expected a bitstring, have %s", asn1_der.ErrInvalid, token)
	}
	if token.Length() == 0 || token.Data[0] > 7 {
		return nil, fmt.Errorf("%w: badly encoded bitstring", asn1_der.ErrInvalid)
	}
	// The first content byte counts unused bits; key and signature bits
	// are always byte-aligned in certificates.
	if token.Data[0] != 0 {
		return nil, fmt.Errorf("%w: bitstring with partial bytes", asn1_der.ErrUnsupported)
	}
	return token.Data[1:], nil
}

// ParseCertificates parses a slice of DER-encoded byte arrays. It returns
// an error if any of the certificates cannot be parsed, or if one leaves
// trailing data.
func ParseCertificates(derChain [][]byte) ([]Certificate, error) {
	if derChain == nil {
		return nil, fmt.Errorf("derChain is nil")
	}
	chain := make([]Certificate, len(derChain))

	for i, certBytes := range derChain {
		p := asn1_der.NewParser(certBytes)
		certificate, err := ParseCertificate(p)
		if err != nil {
			return nil, err
		}
		if !p.End() {
			return nil, fmt.Errorf("%w: trailing data after certificate", asn1_der.ErrMalformed)
		}
		chain[i] = certificate
	}

	return chain, nil
}

// ParseAll parses every certificate in a buffer of concatenated DER
// certificates.
func ParseAll(data []byte) ([]Certificate, error) {
	var certs []Certificate
	p := asn1_der.NewParser(data)
	for !p.End() {
		certificate, err := ParseCertificate(p)
		if err != nil {
			return nil, err
		}
		certs = append(certs, certificate)
	}
	return certs, nil
}
