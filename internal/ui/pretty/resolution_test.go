package pretty_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/mdsync/internal/ui/pretty"
)

func TestFormatResolution(t *testing.T) {
	styles := pretty.NewStyles(false)

	tests := []struct {
		name     string
		line     int
		resolved int
		want     string
	}{
		{name: "block line", line: 14, resolved: 12, want: "doc.md:14  -> line 12  (#pragma-line-12)\n"},
		{name: "top of document", line: 2, resolved: 1, want: "doc.md:2  -> top of document\n"},
		{name: "no target", line: 99, resolved: 0, want: "doc.md:99  no target\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, styles.FormatResolution("doc.md", tt.line, tt.resolved))
		})
	}
}

func TestFormatFileError(t *testing.T) {
	styles := pretty.NewStyles(false)

	got := styles.FormatFileError("broken.md", errors.New("permission denied"))

	assert.Equal(t, "  broken.md  error  permission denied\n", got)
}

func TestFormatFileHeader(t *testing.T) {
	styles := pretty.NewStyles(false)

	assert.Equal(t, "README.md (3 blocks)", styles.FormatFileHeader("README.md", 3))
	assert.Equal(t, "README.md (1 block)", styles.FormatFileHeader("README.md", 1))
	assert.Equal(t, "README.md", styles.FormatFileHeader("README.md", 0))
}
