package transport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTripNoCodec(t *testing.T) {
	req := Request{
		Kind:         KindSnapshot,
		RequestToken: "tok-1",
		ServiceID:    42,
		ModelType:    6,
		ItemName:     "IBM.N?open=09:00&close=09:30&days=1",
		WireMajor:    1,
		WireMinor:    2,
	}

	env, err := EncodeEnvelope(req, CodecNone)
	require.NoError(t, err)

	got, err := DecodeEnvelope(env)
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestEnvelopeRoundTripCodecs(t *testing.T) {
	req := Request{
		Kind:         KindSnapshot,
		RequestToken: "tok-2",
		ServiceID:    1,
		ModelType:    6,
		ItemName:     "VOD.L?open=08:00&close=16:30&days=20&offset=0&tz=Europe/London",
		WireMajor:    1,
		WireMinor:    0,
	}

	for _, codec := range []CodecKind{CodecNone, CodecSnappy, CodecLZ4, CodecZstd} {
		codec := codec
		t.Run("", func(t *testing.T) {
			env, err := EncodeEnvelope(req, codec)
			require.NoError(t, err)

			got, err := DecodeEnvelope(env)
			require.NoError(t, err)
			require.Equal(t, req, got)
		})
	}
}

func TestAbortEnvelopeDecodesToAbortKind(t *testing.T) {
	env := AbortEnvelope()
	req, err := DecodeEnvelope(env)
	require.NoError(t, err)
	require.Equal(t, KindAbort, req.Kind)
}

func TestDecodeShortEnvelope(t *testing.T) {
	_, err := DecodeEnvelope(Envelope{1, 2, 3})
	require.Error(t, err)
}

func TestParseCodecKind(t *testing.T) {
	cases := map[string]CodecKind{
		"":       CodecNone,
		"none":   CodecNone,
		"snappy": CodecSnappy,
		"lz4":    CodecLZ4,
		"zstd":   CodecZstd,
	}
	for in, want := range cases {
		got, err := ParseCodecKind(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseCodecKind("bogus")
	require.Error(t, err)
}
