package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/httpware/session"
)

func TestDefaultCodec(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		in := []byte("some-session-id.payload~!@#")
		encoded := session.DefaultCodec.Encode(in)

		out, err := session.DefaultCodec.Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("cookie safe output", func(t *testing.T) {
		t.Parallel()

		encoded := session.DefaultCodec.Encode([]byte{0x00, 0xff, 0x10, 0x80})
		assert.NotContains(t, encoded, "=")
		assert.NotContains(t, encoded, "+")
		assert.NotContains(t, encoded, "/")
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		t.Parallel()

		_, err := session.DefaultCodec.Decode("not base64 at all!!")
		assert.Error(t, err)
	})
}
