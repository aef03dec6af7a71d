package msgsvc

import (
	"fmt"
	"strings"

	"github.com/sir_venger/msg2json/internal/models"
	"github.com/sir_venger/msg2json/pkg/msgproto"
)

// Verdict — решение классификатора по одной части формы.
type Verdict int

const (
	// VerdictIgnore — часть не относится к документу и пропускается.
	VerdictIgnore Verdict = iota
	// VerdictOutlook — часть "msg" с типом application/vnd.ms-outlook.
	VerdictOutlook
	// VerdictOctetStream — часть "msg" с общим типом application/octet-stream, вероятно .msg.
	VerdictOctetStream
)

// AcceptedContentTypes — закрытый набор типов, допустимых для части "msg".
var AcceptedContentTypes = map[string]Verdict{
	msgproto.ContentTypeOutlook:     VerdictOutlook,
	msgproto.ContentTypeOctetStream: VerdictOctetStream,
}

// IsDocument сообщает, нужно ли вычитывать часть как документ.
func (v Verdict) IsDocument() bool {
	return v == VerdictOutlook || v == VerdictOctetStream
}

func (v Verdict) String() string {
	switch v {
	case VerdictOutlook:
		return "outlook"
	case VerdictOctetStream:
		return "octet_stream"
	default:
		return "ignored"
	}
}

// Classify решает судьбу части по имени поля и заявленному Content-Type.
// Для части "msg" отсутствующий или чужой тип — ошибка ErrInvalidHeader,
// которая обрывает обработку всего запроса.
func Classify(part models.Part) (Verdict, error) {
	if part.Name != msgproto.DocumentField {
		return VerdictIgnore, nil
	}

	raw := strings.TrimSpace(part.ContentType)
	if raw == "" {
		return VerdictIgnore, fmt.Errorf("part %q: file type could not be determined: %w", part.Name, models.ErrInvalidHeader)
	}

	// Параметры не допускаются: метка сравнивается целиком, без учёта регистра.
	verdict, ok := AcceptedContentTypes[strings.ToLower(raw)]
	if !ok {
		return VerdictIgnore, fmt.Errorf("part %q: invalid file type %q, please provide a .msg file: %w", part.Name, raw, models.ErrInvalidHeader)
	}

	return verdict, nil
}
