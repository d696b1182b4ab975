package format

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

const (
	regDWORD = 4
	regSZ    = 1
)

func TestDecodeKeyValueFull_HiddenName(t *testing.T) {
	name := []uint16{0, 'Y'}
	data := []byte{0x39, 0x05, 0, 0} // 1337
	buf := make([]byte, KeyValueFullSize(len(name), len(data)))
	if n := EncodeKeyValueFull(buf, regDWORD, name, data); n != len(buf) {
		t.Fatalf("EncodeKeyValueFull size = %d, want %d", n, len(buf))
	}

	kv, err := DecodeKeyValueFull(buf)
	if err != nil {
		t.Fatalf("DecodeKeyValueFull: %v", err)
	}
	if kv.Type != regDWORD {
		t.Errorf("Type = %d, want %d", kv.Type, regDWORD)
	}
	if len(kv.Name) != 2 || kv.Name[0] != 0 || kv.Name[1] != 'Y' {
		t.Errorf("Name = %v, want [0 'Y']", kv.Name)
	}
	if !bytes.Equal(kv.Data, data) {
		t.Errorf("Data = %x, want %x", kv.Data, data)
	}
	if binary.LittleEndian.Uint32(kv.Data) != 1337 {
		t.Errorf("Data value = %d, want 1337", binary.LittleEndian.Uint32(kv.Data))
	}
}

func TestDecodeKeyValueFull_NoTerminatorAssumed(t *testing.T) {
	// Data ends exactly at the end of the buffer, no trailing zero units.
	name := []uint16{'A', 'B'}
	data := []byte{'h', 0, 'i', 0}
	buf := make([]byte, KeyValueFullSize(len(name), len(data)))
	EncodeKeyValueFull(buf, regSZ, name, data)

	kv, err := DecodeKeyValueFull(buf)
	if err != nil {
		t.Fatalf("DecodeKeyValueFull: %v", err)
	}
	if len(kv.Data) != 4 {
		t.Errorf("len(Data) = %d, want 4", len(kv.Data))
	}
}

func TestDecodeKeyValueFull_EmptyData(t *testing.T) {
	name := []uint16{'E'}
	buf := make([]byte, KeyValueFullSize(len(name), 0))
	EncodeKeyValueFull(buf, 3, name, nil)

	kv, err := DecodeKeyValueFull(buf)
	if err != nil {
		t.Fatalf("DecodeKeyValueFull: %v", err)
	}
	if kv.Data != nil {
		t.Errorf("Data = %x, want nil", kv.Data)
	}
}

func TestDecodeKeyValueFull_Errors(t *testing.T) {
	t.Run("short header", func(t *testing.T) {
		_, err := DecodeKeyValueFull(make([]byte, KVFullHeaderSize-1))
		if !errors.Is(err, ErrTruncated) {
			t.Fatalf("err = %v, want ErrTruncated", err)
		}
	})

	t.Run("name past end", func(t *testing.T) {
		buf := make([]byte, KVFullHeaderSize+2)
		PutU32(buf, KVFullNameLenOffset, 8)
		_, err := DecodeKeyValueFull(buf)
		if !errors.Is(err, ErrBadLength) {
			t.Fatalf("err = %v, want ErrBadLength", err)
		}
	})

	t.Run("odd name length", func(t *testing.T) {
		buf := make([]byte, KVFullHeaderSize+4)
		PutU32(buf, KVFullNameLenOffset, 3)
		_, err := DecodeKeyValueFull(buf)
		if !errors.Is(err, ErrOddLength) {
			t.Fatalf("err = %v, want ErrOddLength", err)
		}
	})

	t.Run("data offset overflow", func(t *testing.T) {
		buf := make([]byte, KVFullHeaderSize)
		PutU32(buf, KVFullDataOffOffset, 0xFFFFFFF0)
		PutU32(buf, KVFullDataLenOffset, 0x20)
		_, err := DecodeKeyValueFull(buf)
		if !errors.Is(err, ErrBadLength) {
			t.Fatalf("err = %v, want ErrBadLength", err)
		}
	})
}

func TestEncodeKeyValueFull_PartialFill(t *testing.T) {
	name := []uint16{'V'}
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	need := KeyValueFullSize(len(name), len(data))

	// Too small for the header: nothing written.
	small := make([]byte, 4)
	if got := EncodeKeyValueFull(small, regDWORD, name, data); got != need {
		t.Fatalf("need = %d, want %d", got, need)
	}
	if !bytes.Equal(small, make([]byte, 4)) {
		t.Fatalf("buffer modified: %x", small)
	}

	// Header fits but the record does not: lengths are reported.
	partial := make([]byte, KVFullHeaderSize)
	EncodeKeyValueFull(partial, regDWORD, name, data)
	if ReadU32(partial, KVFullDataLenOffset) != uint32(len(data)) {
		t.Fatalf("DataLength not reported in partial header")
	}
}

func TestKeyValueFullSize_Alignment(t *testing.T) {
	// 20-byte header + 2-byte name = 22, aligned to 24.
	if got := KeyValueFullSize(1, 4); got != 28 {
		t.Fatalf("KeyValueFullSize(1, 4) = %d, want 28", got)
	}
	if got := KeyValueFullSize(2, 0); got != KVFullHeaderSize+4 {
		t.Fatalf("KeyValueFullSize(2, 0) = %d, want %d", got, KVFullHeaderSize+4)
	}
}
