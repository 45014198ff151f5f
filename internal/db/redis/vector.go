package redis

import (
	"encoding/binary"
	"math"
)

// VectorToBytes serializes a []float32 to the little-endian binary string
// RediSearch expects for FLOAT32 vector fields.
func VectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// BytesToVector deserializes a binary string back to []float32.
// Returns nil for malformed input.
func BytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
