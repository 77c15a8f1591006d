// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package util

import (
	"bytes"
	"encoding/binary"
)

var ByteOrder binary.ByteOrder = binary.BigEndian

func ConcatBytes(srcs ...[]byte) []byte {
	buf := bytes.NewBuffer(nil)
	for _, src := range srcs {
		buf.Grow(len(src))
	}
	for _, src := range srcs {
		buf.Write(src)
	}
	return buf.Bytes()
}

// DecodeUint64 decodes a big endian state value. Nil or short values decode to zero.
func DecodeUint64(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return ByteOrder.Uint64(b)
}

func EncodeUint64(value uint64) []byte {
	b := make([]byte, 8)
	ByteOrder.PutUint64(b, value)
	return b
}
