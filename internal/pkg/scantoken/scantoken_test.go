package scantoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  Token
	}{
		{
			name:  "bare code",
			input: "BR-QR-7f3a",
			want:  Token{Kind: KindRaw, Raw: "BR-QR-7f3a"},
		},
		{
			name:  "bare code with whitespace",
			input: "  BR-QR-7f3a \n",
			want:  Token{Kind: KindRaw, Raw: "BR-QR-7f3a"},
		},
		{
			name:  "structured code",
			input: `{"code": "BR-QR-7f3a"}`,
			want:  Token{Kind: KindStructured, Code: "BR-QR-7f3a"},
		},
		{
			name:  "structured subject id",
			input: `{"id": "stu-123"}`,
			want:  Token{Kind: KindStructured, ID: "stu-123"},
		},
		{
			name:  "structured branch and code",
			input: `{"branchId": "br-9", "code": "BR-QR-7f3a"}`,
			want:  Token{Kind: KindStructured, BranchID: "br-9", Code: "BR-QR-7f3a"},
		},
		{
			name:  "malformed json falls back to raw",
			input: `{"code": "BR-QR`,
			want:  Token{Kind: KindRaw, Raw: `{"code": "BR-QR`},
		},
		{
			name:  "empty json object falls back to raw",
			input: `{}`,
			want:  Token{Kind: KindRaw, Raw: `{}`},
		},
		{
			name:  "json with unknown fields only falls back to raw",
			input: `{"foo": "bar"}`,
			want:  Token{Kind: KindRaw, Raw: `{"foo": "bar"}`},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Parse(c.input))
		})
	}
}
