package main

import (
	"bufio"
	"crypto/x509"
	"encoding/hex"
	stdpem "encoding/pem"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/nuts-foundation/go-x509parser/internal"
	"github.com/nuts-foundation/go-x509parser/pem"
	"github.com/nuts-foundation/go-x509parser/x509_cert"
	"github.com/nuts-foundation/go-x509parser/x509_name"
)

type Dump struct {
	CertificateFile string `arg:"" name:"certificate_file" help:"Certificate file, PEM or raw DER." type:"existingfile"`
}

type Compare struct {
	CertificateFileA string `arg:"" name:"certificate_file_a" help:"First certificate file." type:"existingfile"`
	CertificateFileB string `arg:"" name:"certificate_file_b" help:"Second certificate file." type:"existingfile"`
}

type TestCert struct {
	CommonName string `arg:"" default:"leaf.fauxcare.example" name:"common_name" help:"Common name for the generated leaf certificate."`
}

var CLI struct {
	Version  kong.VersionFlag `help:"Show version."`
	Dump     Dump             `cmd:"" help:"Decode and print the certificates in a file."`
	Compare  Compare          `cmd:"" help:"Compare the subject names of two certificates."`
	TestCert TestCert         `cmd:"" help:"Generate a test certificate chain."`
}

// version is overridden with -ldflags at release time.
var version = "dev"

func main() {
	cli := &CLI
	parser, err := kong.New(cli, kong.Vars{"version": version})
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		parser.FatalIfErrorf(err)
	}

	switch ctx.Command() {
	case "dump <certificate_file>":
		if err := dumpCertificates(cli.Dump.CertificateFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "compare <certificate_file_a> <certificate_file_b>":
		if err := compareSubjects(cli.Compare.CertificateFileA, cli.Compare.CertificateFileB); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "test-cert", "test-cert <common_name>":
		if err := writeTestChain(cli.TestCert.CommonName); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "Unknown command")
		os.Exit(1)
	}
}

// loadCertificates reads a file and decodes every certificate in it. PEM
// input may hold multiple CERTIFICATE blocks; anything else is treated as
// concatenated DER.
func loadCertificates(path string) ([]x509_cert.Certificate, error) {
	blocks, err := pem.ParseFileOrPath(path, "CERTIFICATE")
	if err != nil {
		return nil, err
	}
	if len(blocks) > 0 {
		return x509_cert.ParseCertificates(blocks)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return x509_cert.ParseAll(content)
}

func dumpCertificates(path string) error {
	certs, err := loadCertificates(path)
	if err != nil {
		return fmt.Errorf("invalid certificate: %w", err)
	}

	out := bufio.NewWriter(os.Stdout)
	defer func() {
		_ = out.Flush()
	}()

	for i := range certs {
		c := &certs[i]
		fmt.Fprintln(out, "---")
		fmt.Fprintf(out, "Version: %d, Serial: %s\n", c.Version+1, hex.EncodeToString(c.SerialNumber))
		fmt.Fprintf(out, "Algorithm: %s\n", c.SignatureAlgorithm)
		fmt.Fprintf(out, "Valid from: %s, to: %s\n", c.NotBefore, c.NotAfter)
		fmt.Fprintln(out, "Issuer:")
		dumpName(out, &c.Issuer)
		fmt.Fprintln(out, "Subject:")
		dumpName(out, &c.Subject)
		if c.HasAltNames {
			fmt.Fprintln(out, "Alternative names:")
			for _, altName := range c.AltNames.All() {
				fmt.Fprintf(out, "  %s\n", altName)
			}
		}
		fmt.Fprintf(out, "Public key: %s (%d bytes)\n", c.PublicKeyAlgorithm, len(c.PublicKey))
	}
	return nil
}

func dumpName(out *bufio.Writer, name *x509_name.Name) {
	for _, rdn := range name.RDNs() {
		fmt.Fprintf(out, "  %s: %s\n", x509_name.AttributeName(rdn.Type), rdn.Value.Data)
	}
}

func compareSubjects(pathA, pathB string) error {
	certsA, err := loadCertificates(pathA)
	if err != nil {
		return fmt.Errorf("%s: %w", pathA, err)
	}
	certsB, err := loadCertificates(pathB)
	if err != nil {
		return fmt.Errorf("%s: %w", pathB, err)
	}
	if len(certsA) == 0 || len(certsB) == 0 {
		return fmt.Errorf("both files must contain at least one certificate")
	}

	subjectA := &certsA[0].Subject
	subjectB := &certsB[0].Subject
	if reason := subjectA.Mismatch(subjectB); reason != "" {
		fmt.Printf("subjects differ: %s\n", reason)
		return nil
	}
	fmt.Println("subjects are equal")
	return nil
}

func writeTestChain(commonName string) error {
	_, chainPems, signingKey, err := internal.BuildSelfSignedCertChain(commonName)
	if err != nil {
		return err
	}

	chainPem := make([]byte, 0)
	for i := 0; i < chainPems.Len(); i++ {
		block, _ := chainPems.Get(i)
		chainPem = append(chainPem, block...)
		chainPem = append(chainPem, '\n')
	}
	if err := os.WriteFile("chain.pem", chainPem, 0644); err != nil {
		return err
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(signingKey)
	if err != nil {
		return err
	}
	keyPem := stdpem.EncodeToMemory(&stdpem.Block{Type: "PRIVATE KEY", Bytes: keyDER})
	if err := os.WriteFile("signing_key.pem", keyPem, 0644); err != nil {
		return err
	}
	return printLineAndFlush("wrote chain.pem and signing_key.pem")
}

// printLineAndFlush writes a line to the standard output and flushes the
// buffered writer.
func printLineAndFlush(line string) error {
	f := bufio.NewWriter(os.Stdout)
	// Make sure to flush
	defer func(f *bufio.Writer) {
		_ = f.Flush()
	}(f)
	_, err := f.WriteString(line + "\n")
	return err
}
