package storage

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"sessionstate/internal/storage/interfaces"
	"sessionstate/internal/structures"
)

type ZstdCompression struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (z *ZstdCompression) Compress(val []byte) ([]byte, error) {
	return z.encoder.EncodeAll(val, make([]byte, 0, len(val)/2)), nil
}

func (z *ZstdCompression) Decompress(val []byte) ([]byte, error) {
	return z.decoder.DecodeAll(val, nil)
}

func (z *ZstdCompression) Close() {
	_ = z.encoder.Close()
	z.decoder.Close()
}

func NewZstdCompressor() (interfaces.CompressorInterface, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ZstdCompression{encoder: encoder, decoder: decoder}, nil
}

// noCompression passes blobs through untouched.
type noCompression struct{}

func (noCompression) Compress(val []byte) ([]byte, error)   { return val, nil }
func (noCompression) Decompress(val []byte) ([]byte, error) { return val, nil }
func (noCompression) Close()                                {}

// NewCompressor picks the blob compression configured for the store. An
// empty setting means none.
func NewCompressor(conf *structures.Config) (interfaces.CompressorInterface, error) {
	switch conf.Store.Compression {
	case "", "none":
		return noCompression{}, nil
	case "zstd":
		return NewZstdCompressor()
	default:
		return nil, fmt.Errorf("unknown compression %q", conf.Store.Compression)
	}
}
