package serialize

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Version int    `msgpack:"v"`
	ID      string `msgpack:"id"`
	Body    []byte `msgpack:"body"`
}

func TestPackUnpack(t *testing.T) {
	in := payload{Version: 1, ID: "abc", Body: bytes.Repeat([]byte(`{"fields":{}}`), 50)}

	packed, err := Pack(in)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(in.Body))

	var out payload
	require.NoError(t, Unpack(packed, &out))
	assert.Equal(t, in, out)
}

func TestUnpackErrors(t *testing.T) {
	var out payload
	assert.ErrorIs(t, Unpack(nil, &out), ErrEmpty)
	assert.Error(t, Unpack([]byte("not zstd"), &out))
}
