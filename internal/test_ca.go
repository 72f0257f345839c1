// Package internal builds throwaway certificate chains for tests and for
// the test-cert CLI command. Nothing here is used by the decoders
// themselves.
package internal

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/cert"
)

// BuildSelfSignedCertChain generates a chain of root, intermediate and leaf
// certificates. The leaf carries a subjectAltName extension with DNS,
// email, URI and IP entries so that decoding every supported alternative
// name type can be exercised end to end.
func BuildSelfSignedCertChain(commonName string) (chain []*x509.Certificate, chainPems *cert.Chain, signingKey *rsa.PrivateKey, err error) {
	rootKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, nil, err
	}
	rootTmpl := CACertTemplate("Root CA")
	rootCert, rootPem, err := CreateCert(rootTmpl, rootTmpl, &rootKey.PublicKey, rootKey)
	if err != nil {
		return nil, nil, nil, err
	}

	intermediateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, nil, err
	}
	intermediateTmpl := CACertTemplate("Intermediate CA")
	intermediateCert, intermediatePem, err := CreateCert(intermediateTmpl, rootCert, &intermediateKey.PublicKey, rootKey)
	if err != nil {
		return nil, nil, nil, err
	}

	signingKey, err = rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, nil, err
	}
	leafTmpl := LeafCertTemplate(commonName)
	leafCert, leafPem, err := CreateCert(leafTmpl, intermediateCert, &signingKey.PublicKey, intermediateKey)
	if err != nil {
		return nil, nil, nil, err
	}

	chain = []*x509.Certificate{leafCert, intermediateCert, rootCert}

	chainPems = &cert.Chain{}
	for _, p := range [][]byte{leafPem, intermediatePem, rootPem} {
		if err = chainPems.Add(p); err != nil {
			return nil, nil, nil, err
		}
	}
	return chain, chainPems, signingKey, nil
}

// serialNumber derives a positive certificate serial from a random UUID.
func serialNumber() *big.Int {
	id := uuid.New()
	return new(big.Int).SetBytes(id[:])
}

// CACertTemplate returns a template for a self-contained CA certificate,
// valid for a month.
func CACertTemplate(commonName string) *x509.Certificate {
	tmpl := &x509.Certificate{
		IsCA:         true,
		SerialNumber: serialNumber(),
		Subject: pkix.Name{
			CommonName:   commonName,
			Organization: []string{"FauxCare"},
			Country:      []string{"NL"},
		},
		SignatureAlgorithm:    x509.SHA256WithRSA,
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Hour * 24 * 30), // valid for a month
		BasicConstraintsValid: true,
	}
	tmpl.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature
	return tmpl
}

// LeafCertTemplate returns a template for a leaf certificate whose
// subjectAltName extension holds one entry of every supported type.
func LeafCertTemplate(commonName string) *x509.Certificate {
	tmpl := &x509.Certificate{
		SerialNumber: serialNumber(),
		Subject: pkix.Name{
			CommonName:   commonName,
			Organization: []string{"FauxCare"},
			Locality:     []string{"Amsterdam"},
		},
		SignatureAlgorithm: x509.SHA256WithRSA,
		NotBefore:          time.Now(),
		NotAfter:           time.Now().Add(time.Hour * 24 * 30),
		DNSNames:           []string{commonName},
		EmailAddresses:     []string{"ops@fauxcare.example"},
		IPAddresses:        []net.IP{net.IPv4(192, 0, 2, 10), net.ParseIP("2001:db8::10")},
		URIs:               []*url.URL{{Scheme: "https", Host: commonName}},
	}
	tmpl.KeyUsage = x509.KeyUsageDigitalSignature
	tmpl.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
	return tmpl
}

// CreateCert generates a new certificate from the template, signed by the
// parent. It returns the parsed certificate and its PEM encoding.
func CreateCert(template, parent *x509.Certificate, pub, parentPriv any) (*x509.Certificate, []byte, error) {
	certDER, err := x509.CreateCertificate(rand.Reader, template, parent, pub, parentPriv)
	if err != nil {
		return nil, nil, err
	}
	created, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, nil, err
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	return created, certPEM, nil
}
