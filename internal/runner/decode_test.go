package runner

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUTF8(t *testing.T) {
	d, err := NewDecoder("utf-8")
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", d.Name())

	out, err := d.Decode([]byte("/dev/disk4 on /Users/zoë (hfs)\n"))
	require.NoError(t, err)
	assert.Equal(t, "/dev/disk4 on /Users/zoë (hfs)\n", out)
}

func TestDecodeInvalidUTF8(t *testing.T) {
	d, err := NewDecoder("UTF-8")
	require.NoError(t, err)

	_, err = d.Decode([]byte{'/', 'd', 'e', 'v', 0xff, 0xfe})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecodingFailed), "got %v", err)
}

func TestDecodeEmpty(t *testing.T) {
	d, err := NewDecoder("UTF-8")
	require.NoError(t, err)

	out, err := d.Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestDecodeMacRoman(t *testing.T) {
	d, err := NewDecoder("macintosh")
	require.NoError(t, err)

	// 0x8e is e-acute in Mac OS Roman.
	out, err := d.Decode([]byte{'c', 'a', 'f', 0x8e})
	require.NoError(t, err)
	assert.Equal(t, "café", out)
}

func TestNewDecoderUnknown(t *testing.T) {
	_, err := NewDecoder("klingon-8")
	assert.Error(t, err)
}
