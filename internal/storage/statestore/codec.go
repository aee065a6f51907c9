package statestore

import (
	"encoding/binary"
	"fmt"

	"github.com/ugorji/go/codec"

	"github.com/LeJamon/goDEXd/internal/storage/compression"
)

// Records are msgpack maps so fields can be added without versioning the
// whole snapshot. Amounts travel as big-endian attos.

type balanceRecord struct {
	Owner        string `codec:"owner"`
	TokenChain   string `codec:"chain"`
	TokenAddress string `codec:"address"`
	TokenSymbol  string `codec:"symbol"`
	Amount       []byte `codec:"amount"`
}

type poolRecord struct {
	ChainA      string `codec:"chain_a"`
	AddressA    string `codec:"address_a"`
	SymbolA     string `codec:"symbol_a"`
	ChainB      string `codec:"chain_b"`
	AddressB    string `codec:"address_b"`
	SymbolB     string `codec:"symbol_b"`
	ReserveA    []byte `codec:"reserve_a"`
	ReserveB    []byte `codec:"reserve_b"`
	TotalShares []byte `codec:"total_shares"`
	FeeRateBps  uint16 `codec:"fee_rate_bps"`
}

var msgpackHandle codec.MsgpackHandle

func encodeRecord(v any) ([]byte, error) {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, &msgpackHandle)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return buf, nil
}

func decodeRecord(data []byte, v any) error {
	dec := codec.NewDecoderBytes(data, &msgpackHandle)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// Value envelope. One flag byte, then either the raw payload or the
// uncompressed length as a uvarint followed by the lz4 block. Small values
// skip compression; the block header would outweigh the savings.
const (
	flagRaw  byte = 0
	flagLZ4  byte = 1
	minCompressSize = 256
)

func packValue(payload []byte, comp compression.Compressor) ([]byte, error) {
	if comp == nil || len(payload) < minCompressSize {
		return append([]byte{flagRaw}, payload...), nil
	}

	compressed, err := comp.Compress(payload)
	if err != nil {
		return nil, err
	}
	if len(compressed) == 0 || len(compressed) >= len(payload) {
		// Incompressible block, keep it raw.
		return append([]byte{flagRaw}, payload...), nil
	}

	out := make([]byte, 0, 1+binary.MaxVarintLen64+len(compressed))
	out = append(out, flagLZ4)
	out = binary.AppendUvarint(out, uint64(len(payload)))
	out = append(out, compressed...)
	return out, nil
}

func unpackValue(value []byte, comp compression.Compressor) ([]byte, error) {
	if len(value) == 0 {
		return nil, fmt.Errorf("empty stored value")
	}
	switch value[0] {
	case flagRaw:
		return value[1:], nil
	case flagLZ4:
		size, n := binary.Uvarint(value[1:])
		if n <= 0 {
			return nil, fmt.Errorf("corrupt value header")
		}
		if comp == nil {
			return nil, fmt.Errorf("compressed value but no compressor configured")
		}
		return comp.Decompress(value[1+n:], int(size))
	default:
		return nil, fmt.Errorf("unknown value flag %d", value[0])
	}
}
