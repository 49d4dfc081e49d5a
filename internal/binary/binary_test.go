package binary

import (
	"testing"
)

func TestGetPut(t *testing.T) {
	b := make([]byte, 4)
	Put[uint32](b, 0x01020304, BigEndian)
	if got := Get[uint32](b, BigEndian); got != 0x01020304 {
		t.Errorf("TestGetPut(big): got 0x%08X, want 0x01020304", got)
	}
	if b[0] != 0x01 {
		t.Errorf("TestGetPut(big): got leading byte 0x%02X, want 0x01", b[0])
	}

	Put[uint32](b, 0x01020304, LittleEndian)
	if got := Get[uint32](b, LittleEndian); got != 0x01020304 {
		t.Errorf("TestGetPut(little): got 0x%08X, want 0x01020304", got)
	}
	if b[0] != 0x04 {
		t.Errorf("TestGetPut(little): got leading byte 0x%02X, want 0x04", b[0])
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		name    string
		b       []byte
		order   Order
		signed  bool
		want    int64
		wantErr bool
	}{
		{name: "signed halfword negative", b: []byte{0xFF, 0xFE}, signed: true, want: -2},
		{name: "unsigned halfword wraps high", b: []byte{0xFF, 0xFE}, want: 65534},
		{name: "signed fullword", b: []byte{0xFF, 0xFF, 0xCF, 0xC7}, signed: true, want: -12345},
		{name: "little-endian fullword", b: []byte{0x39, 0x30, 0x00, 0x00}, order: LittleEndian, signed: true, want: 12345},
		{name: "signed doubleword", b: []byte{0x80, 0, 0, 0, 0, 0, 0, 0}, signed: true, want: -9223372036854775808},
		{name: "unsigned doubleword overflow", b: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, wantErr: true},
		{name: "bad width", b: []byte{1, 2, 3}, wantErr: true},
	}

	for _, test := range tests {
		got, err := Int(test.b, test.order, test.signed)
		switch {
		case err == nil && test.wantErr:
			t.Errorf("TestInt(%s): got err == nil, want err != nil", test.name)
			continue
		case err != nil && !test.wantErr:
			t.Errorf("TestInt(%s): got err == %s, want err == nil", test.name, err)
			continue
		case err != nil:
			continue
		}
		if got != test.want {
			t.Errorf("TestInt(%s): got %d, want %d", test.name, got, test.want)
		}
	}
}

func TestUint(t *testing.T) {
	tests := []struct {
		name  string
		b     []byte
		order Order
		want  uint64
	}{
		{name: "4 byte big-endian RDW", b: []byte{0x00, 0x00, 0x01, 0x00}, want: 256},
		{name: "2 byte little-endian", b: []byte{0x01, 0x02}, order: LittleEndian, want: 0x0201},
		{name: "3 byte big-endian", b: []byte{0x01, 0x02, 0x03}, want: 0x010203},
		{name: "1 byte", b: []byte{0x7F}, want: 127},
	}
	for _, test := range tests {
		if got := Uint(test.b, test.order); got != test.want {
			t.Errorf("TestUint(%s): got %d, want %d", test.name, got, test.want)
		}
	}
}
