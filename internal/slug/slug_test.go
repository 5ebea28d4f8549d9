package slug

import (
	"crypto/sha1" //nolint:gosec // test mirrors production hashing
	"encoding/hex"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pelagia/internal/core/domain"
)

func hashPrefix(rel string) string {
	sum := sha1.Sum([]byte(rel)) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])[:8]
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Setup", "setup"},
		{"spaces collapse", "Getting   Started", "getting-started"},
		{"punctuation dropped", "What's new? (v2.0)", "whats-new-v20"},
		{"html tags removed", "Install <code>cli</code> tool", "install-cli-tool"},
		{"emphasis removed", "**Bold** _and_ `code`", "bold-and-code"},
		{"hyphens collapse", "a -- b - - c", "a-b-c"},
		{"leading and trailing hyphens trimmed", "--edge--", "edge"},
		{"surrounding whitespace", "  Intro  ", "intro"},
		{"non ascii dropped", "Café Menü", "caf-men"},
		{"empty falls back", "", Fallback},
		{"only symbols falls back", "!!!", Fallback},
		{"file path", "docs intro.md", "docs-intromd"},
		{"non-breaking space", "Hello\u00a0World", "hello-world"},
		{"ideographic space", "Hello\u3000World", "hello-world"},
		{"narrow no-break space", "Release\u202fNotes", "release-notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	for _, in := range []string{"Setup Guide", "a/b/c.md", "###", "x--y"} {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once), "input %q", in)
	}
}

func TestFromRelPath(t *testing.T) {
	got := FromRelPath("guide/Setup.md")
	assert.Equal(t, "guide-setupmd-"+hashPrefix("guide/Setup.md"), got)
}

func TestFromRelPath_DistinctPathsSameSlugBase(t *testing.T) {
	// Both slugify to "a-bmd" but hash differently.
	first := FromRelPath("a/b.md")
	second := FromRelPath("a b.md")

	assert.NotEqual(t, first, second)
	assert.Equal(t, "a-bmd-"+hashPrefix("a/b.md"), first)
	assert.Equal(t, "a-bmd-"+hashPrefix("a b.md"), second)
}

func TestFromRelPath_Stable(t *testing.T) {
	assert.Equal(t, FromRelPath("x/y.md"), FromRelPath("x/y.md"))
}

func TestForDocument(t *testing.T) {
	root := t.TempDir()

	t.Run("nested document", func(t *testing.T) {
		got, err := ForDocument(root, filepath.Join(root, "guide", "intro.md"))
		require.NoError(t, err)
		assert.Equal(t, FromRelPath("guide/intro.md"), got)
	})

	t.Run("outside root", func(t *testing.T) {
		_, err := ForDocument(root, filepath.Join(filepath.Dir(root), "other.md"))
		assert.ErrorIs(t, err, domain.ErrOutsideRoot)
	})

	t.Run("root itself", func(t *testing.T) {
		_, err := ForDocument(root, root)
		assert.ErrorIs(t, err, domain.ErrOutsideRoot)
	})
}
