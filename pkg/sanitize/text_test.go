package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "hello", want: "hello"},
		{name: "empty", in: "", want: ""},
		{name: "script dropped with content", in: "<script>x</script>", want: ""},
		{name: "style dropped with content", in: "a<style>body{}</style>b", want: "ab"},
		{name: "tags stripped keep text", in: "<b>bold</b> text", want: "bold text"},
		{name: "nested markup", in: `<div class="x"><a href="javascript:alert(1)">link</a></div>`, want: "link"},
		{name: "lone less-than stays encoded", in: "1 < 2", want: "1 &lt; 2"},
		{name: "encoded markup is not revived", in: "&lt;b&gt;x&lt;/b&gt;", want: "&lt;b&gt;x&lt;/b&gt;"},
		{name: "ampersand kept as is", in: "Tom & Jerry", want: "Tom & Jerry"},
		{name: "quotes kept as is", in: `say "hi" it's`, want: `say "hi" it's`},
		{name: "line breaks and tabs collapsed", in: "  a\n\tb \r\n c  ", want: "a b c"},
		{name: "control characters removed", in: "a\x00b\x07c", want: "abc"},
		{name: "c1 controls removed", in: "a\u0085 b\u009fc", want: "a bc"},
		{name: "percent octets removed", in: "100%25 sure", want: "100 sure"},
		{name: "nested octets removed", in: "a%2%252b", want: "ab"},
		{name: "invalid utf8", in: "abc\xff", want: ""},
		{name: "unicode kept", in: "Привет, мир", want: "Привет, мир"},
		{name: "nfc normalized", in: "e\u0301", want: "\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestText_Idempotent(t *testing.T) {
	inputs := []string{"hello", "<i>x</i> y", "1 < 2 > 0", "Tom & Jerry", "a%41b"}
	for _, in := range inputs {
		once := Text(in)
		assert.Equal(t, once, Text(once), "input %q", in)
	}
}
