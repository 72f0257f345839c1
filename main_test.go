package main

import (
	"bytes"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionFlag(t *testing.T) {
	var out bytes.Buffer
	parser, err := kong.New(&CLI,
		kong.Vars{"version": version},
		kong.Writers(&out, &out),
		kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--version"})
	assert.Contains(t, out.String(), version)
}
