// Package binary replaces the encoding/binary package in the standard library
// with generic big and little endian integer access. Mainframe COMP fields are
// big-endian, so unlike most wire formats big-endian is the default here.
package binary

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/constraints"
)

// Order selects the byte order of a binary field.
type Order uint8

const (
	BigEndian    Order = 0
	LittleEndian Order = 1
)

func (o Order) String() string {
	if o == LittleEndian {
		return "little-endian"
	}
	return "big-endian"
}

// byteOrder maps Order onto the standard library's ByteOrder tables.
func (o Order) byteOrder() binary.ByteOrder {
	if o == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Get reads any integer size from a []byte slice in the given order.
// len(b) must be exactly the size of T.
func Get[T constraints.Integer](b []byte, o Order) T {
	_ = b[len(b)-1] // bounds check hint to compiler; see golang.org/issue/14808

	var r T // This is only used for type detection.
	switch any(r).(type) {
	case int8:
		return T(int8(b[0]))
	case uint8:
		return T(b[0])
	case int16:
		return T(int16(o.byteOrder().Uint16(b)))
	case uint16:
		return T(o.byteOrder().Uint16(b))
	case int32:
		return T(int32(o.byteOrder().Uint32(b)))
	case uint32:
		return T(o.byteOrder().Uint32(b))
	case int64:
		return T(int64(o.byteOrder().Uint64(b)))
	case uint64:
		return T(o.byteOrder().Uint64(b))
	}
	panic(fmt.Sprintf("unsupported type that passed the type constraint %T", r))
}

// Put writes an integer into a []byte slice in the given order. len(b) must be
// exactly the size of T.
func Put[T constraints.Integer](b []byte, v T, o Order) {
	switch any(v).(type) {
	case int8, uint8:
		b[0] = byte(v)
	case int16, uint16:
		o.byteOrder().PutUint16(b, uint16(v))
	case int32, uint32:
		o.byteOrder().PutUint32(b, uint32(v))
	default:
		o.byteOrder().PutUint64(b, uint64(v))
	}
}

// Int decodes a signed or unsigned two's-complement integer of 1, 2, 4 or 8
// bytes into an int64. Signed selects sign extension.
func Int(b []byte, o Order, signed bool) (int64, error) {
	switch len(b) {
	case 1:
		if signed {
			return int64(Get[int8](b, o)), nil
		}
		return int64(Get[uint8](b, o)), nil
	case 2:
		if signed {
			return int64(Get[int16](b, o)), nil
		}
		return int64(Get[uint16](b, o)), nil
	case 4:
		if signed {
			return int64(Get[int32](b, o)), nil
		}
		return int64(Get[uint32](b, o)), nil
	case 8:
		if signed {
			return Get[int64](b, o), nil
		}
		v := Get[uint64](b, o)
		if v > 1<<63-1 {
			return 0, fmt.Errorf("unsigned 8 byte value %d overflows int64", v)
		}
		return int64(v), nil
	}
	return 0, fmt.Errorf("binary field must be 1, 2, 4 or 8 bytes, got %d", len(b))
}

// Uint decodes an unsigned integer of 1..8 bytes into a uint64. Record length
// headers use this, since their width is configurable and not a power of two
// in every shop.
func Uint(b []byte, o Order) uint64 {
	var v uint64
	if o == BigEndian {
		for _, c := range b {
			v = v<<8 | uint64(c)
		}
		return v
	}
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
