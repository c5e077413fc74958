package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrips(t *testing.T) {
	e := Envelope{Round: 4, From: 2, Payload: []byte{1, 2, 3, 4, 5}}

	bs, err := Encode(e)
	require.NoError(t, err)

	got, err := Decode(bs)
	require.NoError(t, err)
	require.Equal(t, e.Round, got.Round)
	require.Equal(t, e.From, got.From)
	require.Equal(t, e.Payload, got.Payload)
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := Decode([]byte{0xff, 0xfe, 0x01})
	require.Error(t, err)
}
