// Package asn1_der provides a token cursor over DER-encoded buffers, built
// on golang.org/x/crypto/cryptobyte. It exposes the small subset of ASN.1
// needed by X.509: token-by-token iteration, explicit descent into
// constructed values, and bounded object identifiers.
//
// The cursor never copies input: all token data are subslices of the buffer
// given to NewParser, which must stay alive as long as any decoded record
// referring to it.
package asn1_der

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// MaxDepth is the maximum nesting depth of constructed values a Parser will
// descend into. All structures used by X.509 identity fields fit well within
// this limit.
const MaxDepth = 12

// Parser splits a DER buffer into Tokens. The zero value is not usable; use
// NewParser.
//
// A Parser walks one nesting level at a time: Next yields the elements of
// the current level, Push descends into the current token and Pop ascends
// again. A Parser is not safe for concurrent use, but independent Parsers
// over independent buffers need no coordination.
type Parser struct {
	levels [MaxDepth + 1]cryptobyte.String
	depth  int
	token  Token
}

// NewParser returns a Parser positioned at the start of data. The buffer
// must not be modified or freed for the lifetime of the Parser and of any
// Token obtained from it.
func NewParser(data []byte) *Parser {
	p := &Parser{}
	p.levels[0] = cryptobyte.String(data)
	return p
}

func (p *Parser) current() *cryptobyte.String {
	return &p.levels[p.depth]
}

// Next advances to and returns the next token at the current nesting level.
// The returned token stays available via Token until the next call.
func (p *Parser) Next() (Token, error) {
	var elem cryptobyte.String
	var tag cryptobyte_asn1.Tag
	if !p.current().ReadAnyASN1Element(&elem, &tag) {
		return Token{}, fmt.Errorf("%w: truncated or badly encoded element", ErrMalformed)
	}
	body := elem
	var data cryptobyte.String
	if !body.ReadAnyASN1(&data, &tag) {
		return Token{}, fmt.Errorf("%w: truncated or badly encoded element", ErrMalformed)
	}
	p.token = Token{
		Class:       Class(uint8(tag) >> 6),
		Tag:         Tag(uint8(tag) & 0x1f),
		Constructed: uint8(tag)&0x20 != 0,
		Data:        data,
		raw:         elem,
	}
	return p.token, nil
}

// Token returns the token most recently read by Next.
func (p *Parser) Token() Token {
	return p.token
}

// Push descends into the current token. Subsequent calls to Next yield the
// children of that token. It fails if the token is not using the constructed
// encoding.
func (p *Parser) Push() error {
	if !p.token.Constructed {
		return fmt.Errorf("%w: cannot descend into primitive encoding", ErrInvalid)
	}
	if p.depth+1 >= len(p.levels) {
		return fmt.Errorf("%w: structures nested deeper than %d levels", ErrMemory, MaxDepth)
	}
	p.depth++
	p.levels[p.depth] = cryptobyte.String(p.token.Data)
	return nil
}

// PushSequence reads the next token, verifies it is a SEQUENCE, and
// descends into it.
func (p *Parser) PushSequence() error {
	token, err := p.Next()
	if err != nil {
		return err
	}
	if !token.IsSequence() {
		return fmt.Errorf("%w: expected SEQUENCE, have %s", ErrInvalid, token)
	}
	return p.Push()
}

// PushSet reads the next token, verifies it is a SET, and descends into it.
func (p *Parser) PushSet() error {
	token, err := p.Next()
	if err != nil {
		return err
	}
	if !token.IsSet() {
		return fmt.Errorf("%w: expected SET, have %s", ErrInvalid, token)
	}
	return p.Push()
}

// Pop ascends one nesting level. It fails if the level being left still
// contains unparsed data.
func (p *Parser) Pop() error {
	if p.depth == 0 {
		return fmt.Errorf("%w: no structure to ascend from", ErrInvalid)
	}
	if !p.levels[p.depth].Empty() {
		return fmt.Errorf("%w: unparsed data at end of structure", ErrMalformed)
	}
	p.depth--
	return nil
}

// Eof reports whether the current nesting level has no more tokens.
func (p *Parser) Eof() bool {
	return p.current().Empty()
}

// End reports whether the whole input buffer has been consumed.
func (p *Parser) End() bool {
	return p.depth == 0 && p.levels[0].Empty()
}
