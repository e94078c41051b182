package codec

import (
	"github.com/fxamacker/cbor/v2"
)

var (
	cborEnc = getCborEncoder()
	cborDec = getCborDecoder()
)

type cborCodec struct{}

func (cborCodec) Marshal(v any) ([]byte, error) {
	return cborEnc.Marshal(v)
}

func (cborCodec) Unmarshal(data []byte, v any) error {
	return cborDec.Unmarshal(data, v)
}

func (cborCodec) Format() Format { return FormatCBOR }

// getCborEncoder uses Core Deterministic Encoding so the same value always
// produces the same bytes.
func getCborEncoder() cbor.EncMode {
	opts := cbor.CoreDetEncOptions()
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

func getCborDecoder() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}
