package transport

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// Envelope is an opaque byte buffer with discrete boundaries (no partial
// reads), encoding a Request with a stable binary TLV schema. spec.md
// §4.2. The fixed-width header is never compressed; only the
// variable-length token/item-name payload is, per the chosen CodecKind.
type Envelope []byte

var errShortEnvelope = errors.New("transport: envelope too short")

const headerLen = 1 /*kind*/ + 1 /*codec*/ + 4 /*serviceID*/ + 4 /*modelType*/ + 1 /*major*/ + 1 /*minor*/ + 4 /*payload len*/

// EncodeEnvelope serializes req into an Envelope, compressing the
// variable-length payload with codec.
func EncodeEnvelope(req Request, codec CodecKind) (Envelope, error) {
	var payload bytes.Buffer
	if err := writeLV(&payload, req.RequestToken); err != nil {
		return nil, err
	}
	if err := writeLV(&payload, req.ItemName); err != nil {
		return nil, err
	}

	compressed, err := compress(codec, payload.Bytes())
	if err != nil {
		return nil, err
	}

	buf := make([]byte, headerLen+len(compressed))
	buf[0] = byte(req.Kind)
	buf[1] = byte(codec)
	binary.BigEndian.PutUint32(buf[2:6], uint32(req.ServiceID))
	binary.BigEndian.PutUint32(buf[6:10], uint32(req.ModelType))
	buf[10] = req.WireMajor
	buf[11] = req.WireMinor
	binary.BigEndian.PutUint32(buf[12:16], uint32(len(compressed)))
	copy(buf[headerLen:], compressed)

	return buf, nil
}

// DecodeEnvelope parses an Envelope back into a Request.
func DecodeEnvelope(env Envelope) (Request, error) {
	if len(env) < headerLen {
		return Request{}, errShortEnvelope
	}

	req := Request{
		Kind:      Kind(env[0]),
		ServiceID: int32(binary.BigEndian.Uint32(env[2:6])),
		ModelType: int32(binary.BigEndian.Uint32(env[6:10])),
		WireMajor: env[10],
		WireMinor: env[11],
	}
	codec := CodecKind(env[1])
	payloadLen := binary.BigEndian.Uint32(env[12:16])
	if uint32(len(env)-headerLen) < payloadLen {
		return Request{}, errShortEnvelope
	}

	if req.Kind == KindAbort {
		return req, nil
	}

	plain, err := decompress(codec, env[headerLen:headerLen+int(payloadLen)])
	if err != nil {
		return Request{}, err
	}

	r := bytes.NewReader(plain)
	token, err := readLV(r)
	if err != nil {
		return Request{}, err
	}
	itemName, err := readLV(r)
	if err != nil {
		return Request{}, err
	}
	req.RequestToken = token
	req.ItemName = itemName

	return req, nil
}

func writeLV(w *bytes.Buffer, s string) error {
	if len(s) > 0xFFFF {
		return errors.Newf("transport: field too long (%d bytes)", len(s))
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(s)))
	w.Write(lenBuf[:])
	w.WriteString(s)
	return nil
}

func readLV(r io.Reader) (string, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", errShortEnvelope
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", errShortEnvelope
	}
	return string(buf), nil
}

// AbortEnvelope returns the fixed ABORT envelope workers check for in
// their run loop, per spec.md §4.2/§4.7.
func AbortEnvelope() Envelope {
	env, err := EncodeEnvelope(Request{Kind: KindAbort}, CodecNone)
	if err != nil {
		panic(err) // unreachable: fixed, always-valid input
	}
	return env
}
