package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/deppfellow/guestbook/internal/lib/hashid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeID(t *testing.T) {
	codec, err := hashid.New("cli-salt", 8)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, encodeID(&buf, codec, "42"))

	var encoded hashidOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &encoded))
	assert.Equal(t, int64(42), encoded.ID)
	assert.GreaterOrEqual(t, len(encoded.Encoded), 8)

	buf.Reset()
	require.NoError(t, decodeID(&buf, codec, encoded.Encoded))

	var decoded hashidOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, encoded, decoded)
}

func TestEncodeID_RejectsBadInput(t *testing.T) {
	codec, err := hashid.New("cli-salt", 8)
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, encodeID(&buf, codec, "forty-two"))
	assert.Error(t, encodeID(&buf, codec, "0"))
	assert.Error(t, decodeID(&buf, codec, "!!!"))
	assert.Empty(t, buf.String())
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{{"serve"}, {"migrate"}, {"hashid", "encode"}, {"hashid", "decode"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
