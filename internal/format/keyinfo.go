package format

import "fmt"

// KeyBasic models a KEY_BASIC_INFORMATION record.
type KeyBasic struct {
	LastWriteTime uint64
	TitleIndex    uint32
	Name          []uint16
}

// DecodeKeyBasic decodes a KEY_BASIC_INFORMATION record.
func DecodeKeyBasic(b []byte) (KeyBasic, error) {
	if len(b) < KeyBasicHeaderSize {
		return KeyBasic{}, fmt.Errorf("key basic: %w (have %d, need %d)",
			ErrTruncated, len(b), KeyBasicHeaderSize)
	}
	nameLen := ReadU32(b, KeyBasicNameLenOffset)
	if nameLen%2 != 0 {
		return KeyBasic{}, fmt.Errorf("key basic name: %w", ErrOddLength)
	}
	end, err := span(len(b), KeyBasicNameOffset, nameLen)
	if err != nil {
		return KeyBasic{}, fmt.Errorf("key basic name: %w", err)
	}
	name, err := UnitsFromBytes(b[KeyBasicNameOffset:end])
	if err != nil {
		return KeyBasic{}, err
	}
	return KeyBasic{
		LastWriteTime: ReadU64(b, KeyBasicLastWriteOffset),
		TitleIndex:    ReadU32(b, KeyBasicTitleOffset),
		Name:          name,
	}, nil
}

// EncodeKeyBasic writes a KEY_BASIC_INFORMATION record into dst and returns
// the size the full record needs. Same partial-fill rules as EncodeKeyValueFull.
func EncodeKeyBasic(dst []byte, lastWrite uint64, name []uint16) int {
	need := KeyBasicHeaderSize + len(name)*2
	if len(dst) < KeyBasicHeaderSize {
		return need
	}
	PutU64(dst, KeyBasicLastWriteOffset, lastWrite)
	PutU32(dst, KeyBasicTitleOffset, 0)
	PutU32(dst, KeyBasicNameLenOffset, uint32(len(name)*2))
	if len(dst) < need {
		return need
	}
	PutUnits(dst[KeyBasicNameOffset:], name)
	return need
}

// KeyFull models the fixed part of a KEY_FULL_INFORMATION record.
// The class name is not decoded.
type KeyFull struct {
	LastWriteTime   uint64
	SubKeys         uint32
	MaxNameLen      uint32
	Values          uint32
	MaxValueNameLen uint32
	MaxValueDataLen uint32
}

// DecodeKeyFull decodes the header of a KEY_FULL_INFORMATION record.
func DecodeKeyFull(b []byte) (KeyFull, error) {
	if len(b) < KeyFullHeaderSize {
		return KeyFull{}, fmt.Errorf("key full: %w (have %d, need %d)",
			ErrTruncated, len(b), KeyFullHeaderSize)
	}
	classOff := ReadU32(b, KeyFullClassOffOffset)
	classLen := ReadU32(b, KeyFullClassLenOffset)
	if classLen > 0 {
		if _, err := span(len(b), classOff, classLen); err != nil {
			return KeyFull{}, fmt.Errorf("key full class: %w", err)
		}
	}
	return KeyFull{
		LastWriteTime:   ReadU64(b, KeyFullLastWriteOffset),
		SubKeys:         ReadU32(b, KeyFullSubKeysOffset),
		MaxNameLen:      ReadU32(b, KeyFullMaxNameLenOffset),
		Values:          ReadU32(b, KeyFullValuesOffset),
		MaxValueNameLen: ReadU32(b, KeyFullMaxValNameOffset),
		MaxValueDataLen: ReadU32(b, KeyFullMaxValDataOffset),
	}, nil
}

// EncodeKeyFull writes a KEY_FULL_INFORMATION record without a class name.
func EncodeKeyFull(dst []byte, kf KeyFull) int {
	if len(dst) < KeyFullHeaderSize {
		return KeyFullHeaderSize
	}
	clear(dst[:KeyFullHeaderSize])
	PutU64(dst, KeyFullLastWriteOffset, kf.LastWriteTime)
	PutU32(dst, KeyFullClassOffOffset, KeyFullHeaderSize)
	PutU32(dst, KeyFullSubKeysOffset, kf.SubKeys)
	PutU32(dst, KeyFullMaxNameLenOffset, kf.MaxNameLen)
	PutU32(dst, KeyFullValuesOffset, kf.Values)
	PutU32(dst, KeyFullMaxValNameOffset, kf.MaxValueNameLen)
	PutU32(dst, KeyFullMaxValDataOffset, kf.MaxValueDataLen)
	return KeyFullHeaderSize
}
