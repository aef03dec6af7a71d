package outlook

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/richardlehane/mscfb"
)

// ErrNotMessage — контейнер CFB открылся, но свойств письма в нём нет.
var ErrNotMessage = errors.New("outlook: compound file carries no message properties")

// document — свойства письма, разложенные по хранилищам CFB.
type document struct {
	root        *propertyBag
	recipients  map[string]*propertyBag
	attachments map[string]*propertyBag
}

// Parse разбирает .msg и собирает из него Message.
func Parse(data []byte) (*Message, error) {
	doc, err := readDocument(data)
	if err != nil {
		return nil, err
	}

	return doc.message(), nil
}

func readDocument(data []byte) (*document, error) {
	r, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open compound file: %w", err)
	}
	return collectDocument(r)
}

// entryWalker обходит записи каталога CFB; конец обхода отмечается io.EOF.
type entryWalker interface {
	Next() (*mscfb.File, error)
}

func collectDocument(r entryWalker) (*document, error) {
	doc := &document{
		root:        newPropertyBag(),
		recipients:  map[string]*propertyBag{},
		attachments: map[string]*propertyBag{},
	}

	for {
		entry, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("walk compound file: %w", err)
		}

		if entry.FileInfo().IsDir() {
			continue
		}

		bag, headerLen := doc.bagFor(entry.Path)
		if bag == nil {
			// Вложенные письма и именованные свойства не разбираем.
			continue
		}

		tag, isProp := parseSubstgName(entry.Name)
		if !isProp && entry.Name != propertiesStream {
			continue
		}

		raw, err := io.ReadAll(entry)
		if err != nil {
			return nil, fmt.Errorf("read stream %s: %w", streamPath(entry.Path, entry.Name), err)
		}

		if entry.Name == propertiesStream {
			bag.loadFixed(raw, headerLen)
			continue
		}
		bag.streams[tag] = raw
	}

	if doc.root.empty() {
		return nil, ErrNotMessage
	}

	return doc, nil
}

// bagFor подбирает хранилище свойств по пути потока внутри CFB.
func (d *document) bagFor(path []string) (*propertyBag, int) {
	switch {
	case len(path) == 0:
		return d.root, topLevelPropsHeader
	case len(path) > 1:
		return nil, 0
	case strings.HasPrefix(path[0], recipPrefix):
		return bagByName(d.recipients, path[0]), subStoragePropsHeader
	case strings.HasPrefix(path[0], attachPrefix):
		return bagByName(d.attachments, path[0]), subStoragePropsHeader
	default:
		return nil, 0
	}
}

func bagByName(bags map[string]*propertyBag, name string) *propertyBag {
	bag, ok := bags[name]
	if !ok {
		bag = newPropertyBag()
		bags[name] = bag
	}
	return bag
}

func (d *document) message() *Message {
	root := d.root
	msg := &Message{
		Headers: parseHeaders(root.Text(pidTransportHeaders)),
		Sender: Person{
			Name:  root.Text(pidSenderName),
			Email: firstNonEmpty(root.Text(pidSenderSMTPAddress), root.Text(pidSenderEmail)),
		},
		To:            []Person{},
		Cc:            []Person{},
		Subject:       root.Text(pidSubject),
		Body:          root.Text(pidBody),
		RTFCompressed: hex.EncodeToString(root.Binary(pidRTFCompressed)),
		Attachments:   []Attachment{},
	}

	if msg.Headers.Date == "" {
		if t, ok := root.Time(pidClientSubmitTime); ok {
			msg.Headers.Date = t.Format(time.RFC1123Z)
		} else if t, ok := root.Time(pidDeliveryTime); ok {
			msg.Headers.Date = t.Format(time.RFC1123Z)
		}
	}

	d.fillRecipients(msg)

	for _, name := range sortedNames(d.attachments) {
		bag := d.attachments[name]
		msg.Attachments = append(msg.Attachments, Attachment{
			DisplayName: bag.Text(pidDisplayName),
			Payload:     hex.EncodeToString(bag.Binary(pidAttachData)),
			Extension:   bag.Text(pidAttachExtension),
			MimeTag:     bag.Text(pidAttachMimeTag),
			FileName:    firstNonEmpty(bag.Text(pidAttachLongFileName), bag.Text(pidAttachFileName)),
		})
	}

	return msg
}

// fillRecipients раскладывает получателей по To/Cc/Bcc. Если хранилищ
// получателей нет, используются отображаемые строки PR_DISPLAY_TO/CC.
func (d *document) fillRecipients(msg *Message) {
	msg.Bcc = d.root.Text(pidDisplayBcc)

	if len(d.recipients) == 0 {
		msg.To = splitDisplayNames(d.root.Text(pidDisplayTo))
		msg.Cc = splitDisplayNames(d.root.Text(pidDisplayCc))
		return
	}

	var bcc []string
	for _, name := range sortedNames(d.recipients) {
		bag := d.recipients[name]
		p := Person{
			Name:  bag.Text(pidDisplayName),
			Email: firstNonEmpty(bag.Text(pidSMTPAddress), bag.Text(pidEmailAddress)),
		}

		typ, _ := bag.Long(pidRecipientType)
		switch typ {
		case recipientCc:
			msg.Cc = append(msg.Cc, p)
		case recipientBcc:
			bcc = append(bcc, firstNonEmpty(p.Name, p.Email))
		default:
			msg.To = append(msg.To, p)
		}
	}

	if msg.Bcc == "" {
		msg.Bcc = strings.Join(bcc, "; ")
	}
}

// parseHeaders достаёт нужные поля из сырых заголовков транспорта.
// Строки до первого заголовка (например, баннер Microsoft Mail) пропускаются.
func parseHeaders(raw string) TransportHeaders {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	for len(lines) > 0 && !strings.Contains(lines[0], ":") {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return TransportHeaders{}
	}

	m, err := mail.ReadMessage(strings.NewReader(strings.Join(lines, "\r\n") + "\r\n\r\n"))
	if err != nil {
		return TransportHeaders{}
	}

	return TransportHeaders{
		ContentType: m.Header.Get("Content-Type"),
		Date:        m.Header.Get("Date"),
		MessageID:   m.Header.Get("Message-Id"),
		ReplyTo:     m.Header.Get("Reply-To"),
	}
}

func splitDisplayNames(s string) []Person {
	out := []Person{}
	for _, name := range strings.Split(s, ";") {
		name = strings.TrimSpace(name)
		if name != "" {
			out = append(out, Person{Name: name})
		}
	}
	return out
}

func sortedNames(bags map[string]*propertyBag) []string {
	names := make([]string, 0, len(bags))
	for name := range bags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func streamPath(dir []string, name string) string {
	if len(dir) == 0 {
		return name
	}
	return strings.Join(dir, "/") + "/" + name
}
