package msgsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/msg2json/internal/models"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		part    models.Part
		verdict Verdict
		wantErr bool
	}{
		{"outlook type", models.Part{Name: "msg", ContentType: "application/vnd.ms-outlook"}, VerdictOutlook, false},
		{"octet stream", models.Part{Name: "msg", ContentType: "application/octet-stream"}, VerdictOctetStream, false},
		{"mixed case", models.Part{Name: "msg", ContentType: "Application/Vnd.MS-Outlook"}, VerdictOutlook, false},
		{"surrounding spaces", models.Part{Name: "msg", ContentType: " application/octet-stream "}, VerdictOctetStream, false},
		{"octet stream with params", models.Part{Name: "msg", ContentType: "application/octet-stream; name=mail.msg"}, VerdictIgnore, true},
		{"outlook with params", models.Part{Name: "msg", ContentType: "Application/Vnd.MS-Outlook; charset=utf-8"}, VerdictIgnore, true},
		{"text plain", models.Part{Name: "msg", ContentType: "text/plain"}, VerdictIgnore, true},
		{"missing type", models.Part{Name: "msg"}, VerdictIgnore, true},
		{"blank type", models.Part{Name: "msg", ContentType: "   "}, VerdictIgnore, true},
		{"malformed type", models.Part{Name: "msg", ContentType: "/;;"}, VerdictIgnore, true},
		{"other field with bad type", models.Part{Name: "comment", ContentType: "text/plain"}, VerdictIgnore, false},
		{"other field without type", models.Part{Name: "attachment"}, VerdictIgnore, false},
		{"name is case sensitive", models.Part{Name: "MSG", ContentType: "text/plain"}, VerdictIgnore, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Classify(tc.part)
			if tc.wantErr {
				require.ErrorIs(t, err, models.ErrInvalidHeader)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.verdict, v)
		})
	}
}

func TestAcceptedContentTypesIsClosed(t *testing.T) {
	assert.Len(t, AcceptedContentTypes, 2)
	for mediaType, v := range AcceptedContentTypes {
		assert.True(t, v.IsDocument(), mediaType)
	}
	assert.False(t, VerdictIgnore.IsDocument())
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "outlook", VerdictOutlook.String())
	assert.Equal(t, "octet_stream", VerdictOctetStream.String())
	assert.Equal(t, "ignored", VerdictIgnore.String())
}
