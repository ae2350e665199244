package session

import "encoding/base64"

// Codec converts an opaque payload to and from a cookie-safe string.
// The default is URL-safe base64 without padding; callers can plug in a
// custom codec via WithParserCodec.
type Codec interface {
	Encode(b []byte) string
	Decode(s string) ([]byte, error)
}

type base64Codec struct{}

func (base64Codec) Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func (base64Codec) Decode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

// DefaultCodec is the codec used by CookieParser unless overridden.
var DefaultCodec Codec = base64Codec{}
