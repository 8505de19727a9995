// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package embed

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// Vector file binary format. All integers little-endian. These values
// are format constants — changing them breaks every existing store.
//
//	offset  size  field
//	0       4     magic "LVEC"
//	4       1     format version (currently 1)
//	5       1     compression tag
//	6       2     reserved (zero)
//	8       4     vector dimension (uint32)
//	12      4     uncompressed payload size in bytes (uint32)
//	16      ...   payload
const (
	vecMagic      = "LVEC"
	vecVersion    = 1
	vecHeaderSize = 16
)

// compressionTag identifies the payload encoding of a vector file.
type compressionTag uint8

const (
	// compressionNone stores the raw little-endian float32 payload.
	// Used when the compressed form would not be smaller (tiny or
	// pathological vectors).
	compressionNone compressionTag = 0

	// compressionBG4LZ4 stores the payload transposed into 4-byte
	// groups and LZ4 block-compressed. Grouping bytes by position
	// clusters the regular sign/exponent bytes of adjacent floats,
	// which LZ4 exploits far better than the interleaved layout.
	compressionBG4LZ4 compressionTag = 1
)

// encodeVectorFile serializes a vector into the LVEC file format.
func encodeVectorFile(vector []float32) []byte {
	raw := vectorToBytes(vector)

	tag := compressionBG4LZ4
	payload, err := compressBG4LZ4(raw)
	if err != nil {
		// Incompressible: store raw. Never an error — compression
		// here is an optimization, not a requirement.
		tag = compressionNone
		payload = raw
	}

	out := make([]byte, vecHeaderSize+len(payload))
	copy(out[0:4], vecMagic)
	out[4] = vecVersion
	out[5] = byte(tag)
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(vector)))
	binary.LittleEndian.PutUint32(out[12:16], uint32(len(raw)))
	copy(out[vecHeaderSize:], payload)
	return out
}

// decodeVectorFile parses the LVEC file format and returns the
// vector. Rejects bad magic, unknown versions, unknown compression
// tags, and any size inconsistency.
func decodeVectorFile(data []byte) ([]float32, error) {
	if len(data) < vecHeaderSize {
		return nil, fmt.Errorf("embed: vector file truncated: %d bytes", len(data))
	}
	if string(data[0:4]) != vecMagic {
		return nil, fmt.Errorf("embed: bad vector file magic %q", data[0:4])
	}
	if data[4] != vecVersion {
		return nil, fmt.Errorf("embed: unsupported vector file version %d", data[4])
	}
	tag := compressionTag(data[5])

	dim := int(binary.LittleEndian.Uint32(data[8:12]))
	uncompressedSize := int(binary.LittleEndian.Uint32(data[12:16]))
	if uncompressedSize != dim*4 {
		return nil, fmt.Errorf("embed: vector file header inconsistent: dim %d but payload size %d",
			dim, uncompressedSize)
	}

	payload := data[vecHeaderSize:]
	var raw []byte
	switch tag {
	case compressionNone:
		if len(payload) != uncompressedSize {
			return nil, fmt.Errorf("embed: uncompressed payload is %d bytes, header says %d",
				len(payload), uncompressedSize)
		}
		raw = payload

	case compressionBG4LZ4:
		var err error
		raw, err = decompressBG4LZ4(payload, uncompressedSize)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("embed: unknown compression tag %d", tag)
	}

	return bytesToVector(raw), nil
}

// ByteGrouping4 + LZ4: transpose float32 data by byte position before
// LZ4 compression, grouping all byte-0s together, then all byte-1s,
// and so on.

func compressBG4LZ4(data []byte) ([]byte, error) {
	transposed := bg4Transpose(data)

	bound := lz4.CompressBlockBound(len(transposed))
	destination := make([]byte, bound)
	written, err := lz4.CompressBlock(transposed, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("embed: lz4 compress: %w", err)
	}

	// CompressBlock returns 0 when it determines the data is
	// incompressible. Also reject output that is not actually
	// smaller than the input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decompressBG4LZ4(compressed []byte, uncompressedSize int) ([]byte, error) {
	destination := make([]byte, uncompressedSize)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("embed: lz4 decompress: %w", err)
	}
	if read != uncompressedSize {
		return nil, fmt.Errorf("embed: lz4 decompress: got %d bytes, expected %d",
			read, uncompressedSize)
	}
	return bg4Untranspose(destination), nil
}

var errIncompressible = fmt.Errorf("embed: data is incompressible")

// bg4Transpose rearranges data so that all byte-position-0 values
// come first, then all byte-position-1 values, etc., in groups of 4.
// If the input length is not a multiple of 4, trailing bytes are
// appended as-is after the transposed groups.
func bg4Transpose(data []byte) []byte {
	length := len(data)
	groupCount := length / 4
	remainder := length % 4

	output := make([]byte, length)
	for i := 0; i < groupCount; i++ {
		output[i] = data[i*4]
		output[groupCount+i] = data[i*4+1]
		output[groupCount*2+i] = data[i*4+2]
		output[groupCount*3+i] = data[i*4+3]
	}
	for i := 0; i < remainder; i++ {
		output[groupCount*4+i] = data[groupCount*4+i]
	}
	return output
}

// bg4Untranspose reverses the bg4Transpose operation.
func bg4Untranspose(data []byte) []byte {
	length := len(data)
	groupCount := length / 4
	remainder := length % 4

	output := make([]byte, length)
	for i := 0; i < groupCount; i++ {
		output[i*4] = data[i]
		output[i*4+1] = data[groupCount+i]
		output[i*4+2] = data[groupCount*2+i]
		output[i*4+3] = data[groupCount*3+i]
	}
	for i := 0; i < remainder; i++ {
		output[groupCount*4+i] = data[groupCount*4+i]
	}
	return output
}
