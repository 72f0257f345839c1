// Package pem loads DER payloads from PEM files for the CLI and tests.
package pem

import (
	"encoding/pem"
	"os"
	"strings"

	"github.com/lestrrat-go/jwx/v2/cert"
)

// ParseFileOrPath processes a file or directory at the given path and
// extracts the DER bytes of all PEM blocks of the specified pemType.
func ParseFileOrPath(path string, pemType string) ([][]byte, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fileInfo.IsDir() {
		return readFile(path, pemType)
	}

	blocks := make([][]byte, 0)
	dir, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	for _, file := range dir {
		if file.IsDir() {
			continue
		}
		found, err := readFile(path+"/"+file.Name(), pemType)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, found...)
	}
	return blocks, nil
}

// readFile reads a file and returns the DER bytes of its PEM blocks of the
// specified type.
func readFile(filename string, pemType string) ([][]byte, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParsePemBlocks(content, pemType), nil
}

// ParsePemBlocks extracts PEM blocks of the given type from data and
// returns their DER bytes.
func ParsePemBlocks(data []byte, pemType string) [][]byte {
	blocks := make([][]byte, 0)
	for {
		pemBlock, tail := pem.Decode(data)
		if pemBlock == nil {
			break
		}
		if pemBlock.Type == pemType {
			blocks = append(blocks, pemBlock.Bytes)
		}
		if tail == nil {
			break
		}
		data = tail
	}
	return blocks
}

// FixChainHeaders replaces newline characters in the certificate chain
// headers with escaped newline sequences. It processes each certificate in
// the provided chain and returns a new chain with the modified headers.
func FixChainHeaders(chain *cert.Chain) (*cert.Chain, error) {
	rv := &cert.Chain{}
	for i := 0; i < chain.Len(); i++ {
		value, _ := chain.Get(i)
		der := strings.ReplaceAll(string(value), "\n", "\\n")
		if err := rv.AddString(der); err != nil {
			return nil, err
		}
	}
	return rv, nil
}
