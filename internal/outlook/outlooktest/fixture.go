package outlooktest

import (
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const filetimeUnixOffset = 116444736000000000

// Recipient — получатель письма; Type соответствует PR_RECIPIENT_TYPE (1 To, 2 Cc, 3 Bcc).
type Recipient struct {
	Name  string
	Email string
	Type  int32
}

type Attachment struct {
	FileName string
	Ext      string
	MimeTag  string
	Data     []byte
}

// Fixture описывает письмо, из которого собирается .msg.
type Fixture struct {
	Subject          string
	Body             string
	SenderName       string
	SenderEmail      string
	DisplayTo        string
	DisplayCc        string
	DisplayBcc       string
	TransportHeaders string
	RTF              []byte
	SubmitTime       time.Time

	// ANSI пишет строковые свойства как PT_STRING8 в cp1252 вместо UTF-16LE.
	ANSI bool

	Recipients  []Recipient
	Attachments []Attachment

	// Extra добавляет произвольные потоки поверх сгенерированных.
	Extra []Stream
}

// Bytes возвращает готовый .msg.
func (f Fixture) Bytes() []byte {
	return BuildCFB(f.Streams())
}

// Streams раскладывает письмо по потокам CFB.
func (f Fixture) Streams() []Stream {
	var out []Stream

	out = f.appendText(out, "", 0x0037, f.Subject)
	out = f.appendText(out, "", 0x1000, f.Body)
	out = f.appendText(out, "", 0x0C1A, f.SenderName)
	out = f.appendText(out, "", 0x5D01, f.SenderEmail)
	out = f.appendText(out, "", 0x0E04, f.DisplayTo)
	out = f.appendText(out, "", 0x0E03, f.DisplayCc)
	out = f.appendText(out, "", 0x0E02, f.DisplayBcc)
	out = f.appendText(out, "", 0x007D, f.TransportHeaders)
	if len(f.RTF) > 0 {
		out = append(out, Stream{Path: substg(0x1009, 0x0102), Data: f.RTF})
	}

	var rootProps []byte
	if !f.SubmitTime.IsZero() {
		ft := uint64(f.SubmitTime.UnixNano()/100 + filetimeUnixOffset)
		var value [8]byte
		binary.LittleEndian.PutUint64(value[:], ft)
		rootProps = propEntry(0x0039, 0x0040, value)
	}
	out = append(out, Stream{
		Path: "__properties_version1.0",
		Data: append(make([]byte, 32), rootProps...),
	})

	for i, r := range f.Recipients {
		dir := fmt.Sprintf("__recip_version1.0_#%08X/", i)
		out = f.appendText(out, dir, 0x3001, r.Name)
		out = f.appendText(out, dir, 0x39FE, r.Email)

		var value [8]byte
		binary.LittleEndian.PutUint32(value[:], uint32(r.Type))
		out = append(out, Stream{
			Path: dir + "__properties_version1.0",
			Data: append(make([]byte, 8), propEntry(0x0C15, 0x0003, value)...),
		})
	}

	for i, a := range f.Attachments {
		dir := fmt.Sprintf("__attach_version1.0_#%08X/", i)
		out = f.appendText(out, dir, 0x3001, a.FileName)
		out = f.appendText(out, dir, 0x3707, a.FileName)
		out = f.appendText(out, dir, 0x3703, a.Ext)
		out = f.appendText(out, dir, 0x370E, a.MimeTag)
		out = append(out,
			Stream{Path: dir + substg(0x3701, 0x0102), Data: a.Data},
			Stream{Path: dir + "__properties_version1.0", Data: make([]byte, 8)},
		)
	}

	return append(out, f.Extra...)
}

func (f Fixture) appendText(out []Stream, dir string, id uint16, s string) []Stream {
	if s == "" {
		return out
	}
	if f.ANSI {
		return append(out, Stream{Path: dir + substg(id, 0x001E), Data: ANSI(s)})
	}
	return append(out, Stream{Path: dir + substg(id, 0x001F), Data: UTF16(s)})
}

func substg(id, typ uint16) string {
	return fmt.Sprintf("__substg1.0_%04X%04X", id, typ)
}

func propEntry(id, typ uint16, value [8]byte) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[0:4], uint32(id)<<16|uint32(typ))
	binary.LittleEndian.PutUint32(b[4:8], 0x6)
	copy(b[8:], value[:])
	return b
}

// UTF16 кодирует строку в UTF-16LE, как Outlook хранит PT_UNICODE.
func UTF16(s string) []byte {
	b, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(err)
	}
	return b
}

// ANSI кодирует строку в cp1252 с завершающим нулём.
func ANSI(s string) []byte {
	b, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(err)
	}
	return append(b, 0)
}
