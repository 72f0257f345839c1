package asn1_der

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserNext(t *testing.T) {
	// INTEGER 5
	p := NewParser([]byte{0x02, 0x01, 0x05})

	token, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, ClassUniversal, token.Class)
	assert.Equal(t, TagInt, token.Tag)
	assert.False(t, token.Constructed)
	assert.Equal(t, []byte{0x05}, token.Data)
	assert.Equal(t, []byte{0x02, 0x01, 0x05}, token.Raw())

	value, err := token.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(5), value)

	assert.True(t, p.End())
}

func TestParserPushPop(t *testing.T) {
	// SEQUENCE { INTEGER 1, INTEGER 2 }
	p := NewParser([]byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02})

	require.NoError(t, p.PushSequence())
	assert.False(t, p.Eof())

	token, err := p.Next()
	require.NoError(t, err)
	value, err := token.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(1), value)

	_, err = p.Next()
	require.NoError(t, err)
	assert.True(t, p.Eof())

	require.NoError(t, p.Pop())
	assert.True(t, p.End())
}

func TestParserPushSequenceWrongTag(t *testing.T) {
	// SET where a SEQUENCE is expected
	p := NewParser([]byte{0x31, 0x00})

	err := p.PushSequence()
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParserPushPrimitive(t *testing.T) {
	p := NewParser([]byte{0x02, 0x01, 0x05})

	_, err := p.Next()
	require.NoError(t, err)
	assert.ErrorIs(t, p.Push(), ErrInvalid)
}

func TestParserPopUnconsumed(t *testing.T) {
	// SEQUENCE { INTEGER 1 } popped before the integer is read
	p := NewParser([]byte{0x30, 0x03, 0x02, 0x01, 0x01})

	require.NoError(t, p.PushSequence())
	assert.ErrorIs(t, p.Pop(), ErrMalformed)
}

func TestParserPopWithoutPush(t *testing.T) {
	p := NewParser(nil)
	assert.ErrorIs(t, p.Pop(), ErrInvalid)
}

func TestParserTruncated(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{name: "MissingContent", data: []byte{0x02, 0x01}},
		{name: "ShortContent", data: []byte{0x30, 0x03, 0x02, 0x01}},
		{name: "BareTag", data: []byte{0x02}},
		{name: "IndefiniteLength", data: []byte{0x30, 0x80, 0x00, 0x00}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewParser(tc.data)
			_, err := p.Next()
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestParserDepthLimit(t *testing.T) {
	data := []byte{0x02, 0x01, 0x01}
	for i := 0; i < MaxDepth+1; i++ {
		data = append([]byte{0x30, byte(len(data))}, data...)
	}

	p := NewParser(data)
	for i := 0; i < MaxDepth; i++ {
		require.NoError(t, p.PushSequence())
	}
	assert.ErrorIs(t, p.PushSequence(), ErrMemory)
}

func TestParserEmptyInput(t *testing.T) {
	p := NewParser(nil)
	assert.True(t, p.End())
	assert.True(t, p.Eof())

	_, err := p.Next()
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestTokenInt(t *testing.T) {
	testCases := []struct {
		name   string
		data   []byte
		value  int64
		errIs  error
	}{
		{name: "Zero", data: []byte{0x02, 0x01, 0x00}, value: 0},
		{name: "Negative", data: []byte{0x02, 0x01, 0xff}, value: -1},
		{name: "TwoBytes", data: []byte{0x02, 0x02, 0x01, 0x00}, value: 256},
		{name: "NonMinimal", data: []byte{0x02, 0x02, 0x00, 0x01}, errIs: ErrMalformed},
		{name: "TooWide", data: []byte{0x02, 0x09, 0x01, 0, 0, 0, 0, 0, 0, 0, 0}, errIs: ErrMemory},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewParser(tc.data)
			token, err := p.Next()
			require.NoError(t, err)

			value, err := token.Int()
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.value, value)
		})
	}
}

func TestTokenPredicates(t *testing.T) {
	// SEQUENCE { UTF8String "x", OID 2.5.4.3 }
	p := NewParser([]byte{0x30, 0x08, 0x0c, 0x01, 'x', 0x06, 0x03, 0x55, 0x04, 0x03})

	require.NoError(t, p.PushSequence())
	assert.True(t, p.Token().IsSequence())
	assert.False(t, p.Token().IsSet())

	token, err := p.Next()
	require.NoError(t, err)
	assert.True(t, token.IsString())
	assert.False(t, token.IsOID())
	assert.Equal(t, 1, token.Length())

	token, err = p.Next()
	require.NoError(t, err)
	assert.True(t, token.IsOID())
	assert.False(t, token.IsString())

	assert.Equal(t, "UNIVERSAL 6 (primitive)", token.String())
}
