package format

import "fmt"

// KeyValueFull models a KEY_VALUE_FULL_INFORMATION record.
type KeyValueFull struct {
	TitleIndex uint32
	Type       uint32
	Name       []uint16 // exactly NameLength/2 code units, embedded zeros kept
	Data       []byte   // aliases the decoded buffer; copy before reuse
}

// DecodeKeyValueFull decodes a KEY_VALUE_FULL_INFORMATION record. The name is
// sliced by NameLength and the data by DataOffset/DataLength; both are
// bounds-checked against len(b).
func DecodeKeyValueFull(b []byte) (KeyValueFull, error) {
	if len(b) < KVFullHeaderSize {
		return KeyValueFull{}, fmt.Errorf("key value full: %w (have %d, need %d)",
			ErrTruncated, len(b), KVFullHeaderSize)
	}

	nameLen := ReadU32(b, KVFullNameLenOffset)
	if nameLen%2 != 0 {
		return KeyValueFull{}, fmt.Errorf("key value full name: %w", ErrOddLength)
	}
	nameEnd, err := span(len(b), KVFullNameOffset, nameLen)
	if err != nil {
		return KeyValueFull{}, fmt.Errorf("key value full name: %w", err)
	}
	name, err := UnitsFromBytes(b[KVFullNameOffset:nameEnd])
	if err != nil {
		return KeyValueFull{}, err
	}

	dataOff := ReadU32(b, KVFullDataOffOffset)
	dataLen := ReadU32(b, KVFullDataLenOffset)
	var data []byte
	if dataLen > 0 {
		dataEnd, err := span(len(b), dataOff, dataLen)
		if err != nil {
			return KeyValueFull{}, fmt.Errorf("key value full data: %w", err)
		}
		data = b[dataOff:dataEnd]
	}

	return KeyValueFull{
		TitleIndex: ReadU32(b, KVFullTitleIndexOffset),
		Type:       ReadU32(b, KVFullTypeOffset),
		Name:       name,
		Data:       data,
	}, nil
}

// KeyValueFullSize returns the number of bytes a record with the given name
// length (in code units) and data length occupies.
func KeyValueFullSize(nameUnits, dataLen int) int {
	if dataLen == 0 {
		return KVFullHeaderSize + nameUnits*2
	}
	return Align(KVFullHeaderSize+nameUnits*2, DataAlignment) + dataLen
}

// EncodeKeyValueFull writes a record into dst and returns the size the full
// record needs. The header is written whenever dst can hold it; the name and
// data are written only when the whole record fits, mirroring the kernel's
// partial fill on STATUS_BUFFER_OVERFLOW.
func EncodeKeyValueFull(dst []byte, typ uint32, name []uint16, data []byte) int {
	need := KeyValueFullSize(len(name), len(data))
	if len(dst) < KVFullHeaderSize {
		return need
	}

	dataOff := 0
	if len(data) > 0 {
		dataOff = Align(KVFullHeaderSize+len(name)*2, DataAlignment)
	}
	PutU32(dst, KVFullTitleIndexOffset, 0)
	PutU32(dst, KVFullTypeOffset, typ)
	PutU32(dst, KVFullDataOffOffset, uint32(dataOff))
	PutU32(dst, KVFullDataLenOffset, uint32(len(data)))
	PutU32(dst, KVFullNameLenOffset, uint32(len(name)*2))

	if len(dst) < need {
		return need
	}
	PutUnits(dst[KVFullNameOffset:], name)
	copy(dst[dataOff:], data)
	return need
}
