package outlook

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Типы MAPI-свойств, встречающиеся в потоках __substg1.0_XXXXYYYY.
const (
	ptLong    uint16 = 0x0003
	ptSysTime uint16 = 0x0040
	ptString8 uint16 = 0x001E
	ptUnicode uint16 = 0x001F
	ptBinary  uint16 = 0x0102
)

// Идентификаторы MAPI-свойств.
const (
	pidSubject            uint16 = 0x0037
	pidClientSubmitTime   uint16 = 0x0039
	pidTransportHeaders   uint16 = 0x007D
	pidSenderName         uint16 = 0x0C1A
	pidSenderEmail        uint16 = 0x0C1F
	pidRecipientType      uint16 = 0x0C15
	pidDisplayBcc         uint16 = 0x0E02
	pidDisplayCc          uint16 = 0x0E03
	pidDisplayTo          uint16 = 0x0E04
	pidDeliveryTime       uint16 = 0x0E06
	pidBody               uint16 = 0x1000
	pidRTFCompressed      uint16 = 0x1009
	pidDisplayName        uint16 = 0x3001
	pidEmailAddress       uint16 = 0x3003
	pidAttachData         uint16 = 0x3701
	pidAttachExtension    uint16 = 0x3703
	pidAttachFileName     uint16 = 0x3704
	pidAttachLongFileName uint16 = 0x3707
	pidAttachMimeTag      uint16 = 0x370E
	pidSMTPAddress        uint16 = 0x39FE
	pidSenderSMTPAddress  uint16 = 0x5D01
)

const (
	substgPrefix     = "__substg1.0_"
	propertiesStream = "__properties_version1.0"
	recipPrefix      = "__recip_version1.0_"
	attachPrefix     = "__attach_version1.0_"

	// Длина заголовка потока __properties_version1.0 у корня сообщения и у
	// вложенных хранилищ (получатели, вложения).
	topLevelPropsHeader   = 32
	subStoragePropsHeader = 8
	propEntrySize         = 16
)

// Разница между эпохой FILETIME (1601-01-01) и Unix-эпохой в 100-нс интервалах.
const filetimeUnixOffset = 116444736000000000

func propTag(id, typ uint16) uint32 {
	return uint32(id)<<16 | uint32(typ)
}

// parseSubstgName достаёт тег свойства из имени потока __substg1.0_XXXXYYYY.
func parseSubstgName(name string) (uint32, bool) {
	if !strings.HasPrefix(name, substgPrefix) {
		return 0, false
	}
	hex := strings.TrimPrefix(name, substgPrefix)
	if len(hex) != 8 {
		return 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// propertyBag — свойства одного хранилища: переменной длины из отдельных
// потоков и фиксированной длины из __properties_version1.0.
type propertyBag struct {
	streams map[uint32][]byte
	fixed   map[uint32][8]byte
}

func newPropertyBag() *propertyBag {
	return &propertyBag{
		streams: map[uint32][]byte{},
		fixed:   map[uint32][8]byte{},
	}
}

func (b *propertyBag) empty() bool {
	return len(b.streams) == 0 && len(b.fixed) == 0
}

// loadFixed разбирает поток __properties_version1.0 после заголовка длиной headerLen.
func (b *propertyBag) loadFixed(raw []byte, headerLen int) {
	if len(raw) < headerLen {
		return
	}
	raw = raw[headerLen:]
	for len(raw) >= propEntrySize {
		tag := binary.LittleEndian.Uint32(raw[0:4])
		var value [8]byte
		copy(value[:], raw[8:16])
		b.fixed[tag] = value
		raw = raw[propEntrySize:]
	}
}

// Text возвращает строковое свойство в Unicode- или ANSI-варианте.
func (b *propertyBag) Text(id uint16) string {
	if raw, ok := b.streams[propTag(id, ptUnicode)]; ok {
		return decodeUnicode(raw)
	}
	if raw, ok := b.streams[propTag(id, ptString8)]; ok {
		return decodeANSI(raw)
	}
	return ""
}

func (b *propertyBag) Binary(id uint16) []byte {
	return b.streams[propTag(id, ptBinary)]
}

func (b *propertyBag) Long(id uint16) (int32, bool) {
	v, ok := b.fixed[propTag(id, ptLong)]
	if !ok {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(v[0:4])), true
}

func (b *propertyBag) Time(id uint16) (time.Time, bool) {
	v, ok := b.fixed[propTag(id, ptSysTime)]
	if !ok {
		return time.Time{}, false
	}
	ft := int64(binary.LittleEndian.Uint64(v[:]))
	if ft <= filetimeUnixOffset {
		return time.Time{}, false
	}
	ft -= filetimeUnixOffset
	return time.Unix(ft/1e7, (ft%1e7)*100).UTC(), true
}

func decodeUnicode(raw []byte) string {
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(out), "\x00")
}

func decodeANSI(raw []byte) string {
	raw = bytes.TrimRight(raw, "\x00")
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
