// Package format houses the decoders and encoders for the variable-length
// records the NT registry calls fill in (KEY_VALUE_FULL_INFORMATION,
// KEY_BASIC_INFORMATION, KEY_FULL_INFORMATION). Every record is a fixed
// little-endian header followed by trailing name/data bytes located by
// declared offsets and lengths; nothing here assumes a terminator.
package format

// KEY_VALUE_FULL_INFORMATION layout:
//
//	0x00  TitleIndex  uint32
//	0x04  Type        uint32
//	0x08  DataOffset  uint32 (from start of record)
//	0x0C  DataLength  uint32
//	0x10  NameLength  uint32 (bytes)
//	0x14  Name        [NameLength]byte, UTF-16LE
//	....  Data        at DataOffset
const (
	KVFullTitleIndexOffset = 0x00
	KVFullTypeOffset       = 0x04
	KVFullDataOffOffset    = 0x08
	KVFullDataLenOffset    = 0x0C
	KVFullNameLenOffset    = 0x10
	KVFullNameOffset       = 0x14
	KVFullHeaderSize       = KVFullNameOffset
)

// KEY_BASIC_INFORMATION layout:
//
//	0x00  LastWriteTime  int64 (FILETIME)
//	0x08  TitleIndex     uint32
//	0x0C  NameLength     uint32 (bytes)
//	0x10  Name           [NameLength]byte, UTF-16LE
const (
	KeyBasicLastWriteOffset = 0x00
	KeyBasicTitleOffset     = 0x08
	KeyBasicNameLenOffset   = 0x0C
	KeyBasicNameOffset      = 0x10
	KeyBasicHeaderSize      = KeyBasicNameOffset
)

// KEY_FULL_INFORMATION layout:
//
//	0x00  LastWriteTime    int64
//	0x08  TitleIndex       uint32
//	0x0C  ClassOffset      uint32
//	0x10  ClassLength      uint32
//	0x14  SubKeys          uint32
//	0x18  MaxNameLen       uint32
//	0x1C  MaxClassLen      uint32
//	0x20  Values           uint32
//	0x24  MaxValueNameLen  uint32
//	0x28  MaxValueDataLen  uint32
//	0x2C  Class            [ClassLength]byte
const (
	KeyFullLastWriteOffset   = 0x00
	KeyFullTitleOffset       = 0x08
	KeyFullClassOffOffset    = 0x0C
	KeyFullClassLenOffset    = 0x10
	KeyFullSubKeysOffset     = 0x14
	KeyFullMaxNameLenOffset  = 0x18
	KeyFullMaxClassLenOffset = 0x1C
	KeyFullValuesOffset      = 0x20
	KeyFullMaxValNameOffset  = 0x24
	KeyFullMaxValDataOffset  = 0x28
	KeyFullHeaderSize        = 0x2C
)

const (
	// DataAlignment is the alignment the kernel uses for the data block of a
	// KEY_VALUE_FULL_INFORMATION record.
	DataAlignment = 8

	// MaxNameBytes is the largest name a UNICODE_STRING can describe.
	MaxNameBytes = 0xFFFE
)
