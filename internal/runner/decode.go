package runner

import (
	"bytes"
	"unicode/utf8"

	"github.com/juju/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// ErrDecodingFailed is returned when a command's output is not valid
// text in the configured encoding.
const ErrDecodingFailed = errors.ConstError("command output could not be decoded")

// Decoder turns captured command output into a string.
type Decoder struct {
	name string
	enc  encoding.Encoding
	utf8 bool
}

// NewDecoder looks up an IANA charset name such as "UTF-8" or
// "macintosh".
func NewDecoder(name string) (*Decoder, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, errors.Annotatef(err, "looking up encoding %q", name)
	}
	if enc == nil {
		return nil, errors.NotSupportedf("encoding %q", name)
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}
	return &Decoder{
		name: canonical,
		enc:  enc,
		utf8: canonical == "UTF-8",
	}, nil
}

func (d *Decoder) Name() string {
	return d.name
}

// Decode is strict: the x/text decoders substitute U+FFFD for bytes
// they cannot map, so UTF-8 input goes through UTF8Validator and any
// other charset fails if the replacement character shows up.
func (d *Decoder) Decode(raw []byte) (string, error) {
	if d.utf8 {
		out, _, err := transform.Bytes(encoding.UTF8Validator, raw)
		if err != nil {
			return "", errors.Annotatef(ErrDecodingFailed, "%s: %v", d.name, err)
		}
		return string(out), nil
	}

	out, err := d.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.Annotatef(ErrDecodingFailed, "%s: %v", d.name, err)
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", errors.Annotatef(ErrDecodingFailed, "invalid %s byte sequence", d.name)
	}
	return string(out), nil
}
