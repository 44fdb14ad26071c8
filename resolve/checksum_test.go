package resolve

import "testing"

func TestParseChecksumFile(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"name-equals-hex", "foo.jar= deadbeef", "deadbeef"},
		{"split-at-first-space", "deadbeef foo.jar", "deadbeef"},
		{"bare-hex", "deadbeef", "deadbeef"},
		{"leading-blank-lines", "\n\n  deadbeef  \n", "deadbeef"},
	}
	for _, c := range cases {
		if got := ParseChecksumFile(c.in); got != c.want {
			t.Errorf("%s: ParseChecksumFile(%q) = %q, want %q", c.name, c.in, got, c.want)
		}
	}
}

func TestFormatChecksum(t *testing.T) {
	if got := FormatChecksum([]byte{0xDE, 0xAD, 0xBE, 0xEF}); got != "deadbeef" {
		t.Errorf("FormatChecksum = %q, want lowercase hex", got)
	}
}
