package rkbloom

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	filterMagic   = "RKBF"
	filterVersion = 1

	// magic(4) + version(1) + k(4) + numBlocks(8) + count(8)
	filterHeaderSize = 25

	// Keeps numBlocks * BlockWords * 8 well inside an int.
	maxSerializedBlocks = uint64(1) << 40
)

var (
	// ErrInvalidData is returned when serialized data is truncated or corrupt.
	ErrInvalidData = errors.New("rkbloom: invalid serialized data")

	// ErrUnsupportedVersion is returned for an unknown format version.
	ErrUnsupportedVersion = errors.New("rkbloom: unsupported serialization version")

	// ErrInvalidK is returned when serialized data names an unsupported k.
	ErrInvalidK = errors.New("rkbloom: invalid k value in serialized data")
)

// MarshalBinary encodes the filter. The layout is little-endian:
//
//	magic "RKBF" | version (1) | k (4) | numBlocks (8) | count (8) | words
//
// Partition sizes are not stored; they follow from k.
func (f *Filter) MarshalBinary() ([]byte, error) {
	buf := make([]byte, filterHeaderSize, filterHeaderSize+len(f.words)*8)
	copy(buf, filterMagic)
	buf[4] = filterVersion
	binary.LittleEndian.PutUint32(buf[5:9], f.k)
	binary.LittleEndian.PutUint64(buf[9:17], f.numBlocks)
	binary.LittleEndian.PutUint64(buf[17:25], f.count)
	for _, w := range f.words {
		buf = binary.LittleEndian.AppendUint64(buf, w)
	}
	return buf, nil
}

// UnmarshalFilter decodes a filter written by [Filter.MarshalBinary].
func UnmarshalFilter(data []byte) (*Filter, error) {
	if len(data) < filterHeaderSize {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrInvalidData, len(data), filterHeaderSize)
	}
	if string(data[:4]) != filterMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidData, data[:4])
	}
	if v := data[4]; v != filterVersion {
		return nil, fmt.Errorf("%w: got version %d, expected %d", ErrUnsupportedVersion, v, filterVersion)
	}

	k := binary.LittleEndian.Uint32(data[5:9])
	numBlocks := binary.LittleEndian.Uint64(data[9:17])
	count := binary.LittleEndian.Uint64(data[17:25])

	if _, ok := primePartitions[k]; !ok {
		return nil, fmt.Errorf("%w: k=%d (valid range %d-%d)", ErrInvalidK, k, minK, maxK)
	}
	if numBlocks == 0 || numBlocks > maxSerializedBlocks {
		return nil, fmt.Errorf("%w: numBlocks=%d", ErrInvalidData, numBlocks)
	}
	if want := filterHeaderSize + numBlocks*BlockWords*8; uint64(len(data)) != want {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d", ErrInvalidData, len(data), want)
	}

	f := NewFilterWithParams(numBlocks, k)
	body := data[filterHeaderSize:]
	for i := range f.words {
		f.words[i] = binary.LittleEndian.Uint64(body[i*8:])
	}
	f.count = count
	return f, nil
}
