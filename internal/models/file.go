package models

// Part описывает заголовки одной секции multipart-тела. Сам поток байт
// остаётся у multipart.Reader и читается ровно один раз.
type Part struct {
	Name        string `json:"name"`
	FileName    string `json:"file_name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// DocumentPayload — полностью вычитанное содержимое части "msg".
type DocumentPayload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Size возвращает размер документа в байтах.
func (p *DocumentPayload) Size() int {
	if p == nil {
		return 0
	}
	return len(p.Data)
}
