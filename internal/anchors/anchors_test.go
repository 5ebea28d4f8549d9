package anchors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docSlug = "amd-0123abcd"

func TestMarker(t *testing.T) {
	assert.Equal(t, "[]{#amd-0123abcd}", Marker(docSlug))
}

func TestRewrite_DocumentAnchorFirst(t *testing.T) {
	res := Rewrite("plain text\n", docSlug)
	assert.Equal(t, "[]{#amd-0123abcd}\n\nplain text\n", res.Text)
	assert.Empty(t, res.Anchors)
}

func TestRewrite_EmptyDocument(t *testing.T) {
	res := Rewrite("", docSlug)
	assert.Equal(t, "[]{#amd-0123abcd}\n\n", res.Text)
}

func TestRewrite_Headings(t *testing.T) {
	res := Rewrite("# Intro\n\ntext\n\n## Getting Started  \n", docSlug)

	assert.Equal(t,
		"[]{#amd-0123abcd}\n\n# Intro {#amd-0123abcd-intro}\n\ntext\n\n## Getting Started {#amd-0123abcd-getting-started}\n",
		res.Text)

	require.Len(t, res.Anchors, 2)
	assert.Equal(t, 1, res.Anchors[0].Level)
	assert.Equal(t, "Intro", res.Anchors[0].Title)
	assert.Equal(t, "amd-0123abcd-intro", res.Anchors[0].ID)
	assert.Equal(t, docSlug, res.Anchors[0].DocumentSlug)
	assert.Equal(t, 2, res.Anchors[1].Level)
	assert.False(t, res.Anchors[1].Explicit)
}

func TestRewrite_UnicodeSpaceHeadings(t *testing.T) {
	res := Rewrite("#\u00a0Hello\u00a0World\n##\u3000Next\n", docSlug)

	require.Len(t, res.Anchors, 2)
	assert.Equal(t, "amd-0123abcd-hello-world", res.Anchors[0].ID)
	assert.Equal(t, 2, res.Anchors[1].Level)
	assert.Equal(t, "amd-0123abcd-next", res.Anchors[1].ID)
	assert.Contains(t, res.Text, "# Hello\u00a0World {#amd-0123abcd-hello-world}\n")
}

func TestRewrite_RepeatedHeadings(t *testing.T) {
	res := Rewrite("# Setup\n## Setup\n### Setup\n", docSlug)

	require.Len(t, res.Anchors, 3)
	assert.Equal(t, "amd-0123abcd-setup", res.Anchors[0].ID)
	assert.Equal(t, "amd-0123abcd-setup-2", res.Anchors[1].ID)
	assert.Equal(t, "amd-0123abcd-setup-3", res.Anchors[2].ID)
}

func TestRewrite_CounterSkipsTakenIDs(t *testing.T) {
	res := Rewrite("# Setup\n# Setup\n# Setup 2\n", docSlug)

	require.Len(t, res.Anchors, 3)
	assert.Equal(t, "amd-0123abcd-setup", res.Anchors[0].ID)
	assert.Equal(t, "amd-0123abcd-setup-2", res.Anchors[1].ID)
	assert.Equal(t, "amd-0123abcd-setup-2-2", res.Anchors[2].ID)
}

func TestRewrite_ExplicitIDWins(t *testing.T) {
	res := Rewrite("## Custom {#my-id}\n", docSlug)

	assert.Equal(t, "[]{#amd-0123abcd}\n\n## Custom {#my-id}\n", res.Text)
	require.Len(t, res.Anchors, 1)
	assert.True(t, res.Anchors[0].Explicit)
	assert.Equal(t, "my-id", res.Anchors[0].ID)
	assert.Equal(t, "Custom", res.Anchors[0].Title)
}

func TestRewrite_ExplicitIDReservedBeforeGeneratedOnes(t *testing.T) {
	res := Rewrite("# Setup\n# Setup\n# Later {#amd-0123abcd-setup-2}\n", docSlug)

	require.Len(t, res.Anchors, 3)
	assert.Equal(t, "amd-0123abcd-setup", res.Anchors[0].ID)
	assert.Equal(t, "amd-0123abcd-setup-3", res.Anchors[1].ID)
	assert.Equal(t, "amd-0123abcd-setup-2", res.Anchors[2].ID)
}

func TestRewrite_NotHeadings(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"no space", "#hashtag"},
		{"seven markers", "####### too deep"},
		{"only markers", "###"},
		{"indented text", "text # not heading"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Rewrite(tt.line+"\n", docSlug)
			assert.Empty(t, res.Anchors)
			assert.Equal(t, Marker(docSlug)+"\n\n"+tt.line+"\n", res.Text)
		})
	}
}

func TestRewrite_SkipsFencedCode(t *testing.T) {
	text := "```bash\n# install deps\n```\n# Real\n"
	res := Rewrite(text, docSlug)

	require.Len(t, res.Anchors, 1)
	assert.Equal(t, "Real", res.Anchors[0].Title)
	assert.Contains(t, res.Text, "```bash\n# install deps\n```\n")
}

func TestRewrite_EmptyTitleFallsBack(t *testing.T) {
	res := Rewrite("# !!!\n", docSlug)
	require.Len(t, res.Anchors, 1)
	assert.Equal(t, "amd-0123abcd-section", res.Anchors[0].ID)
}

func TestRewrite_PreservesTitleFormatting(t *testing.T) {
	res := Rewrite("## The `run` **command**\n", docSlug)
	assert.Contains(t, res.Text, "## The `run` **command** {#amd-0123abcd-the-run-command}\n")
}

func TestRewrite_Idempotent(t *testing.T) {
	text := "# A\n## B\n# A\n"
	assert.Equal(t, Rewrite(text, docSlug), Rewrite(text, docSlug))
}

func TestResult_IDs(t *testing.T) {
	res := Rewrite("# A\n## B {#b}\n", docSlug)
	assert.Equal(t, []string{docSlug, "amd-0123abcd-a", "b"}, res.IDs(docSlug))
}

func TestRewrite_AnchorCount(t *testing.T) {
	res := Rewrite("# One\n## Two\ntext\n### Three\n", docSlug)
	ids := res.IDs(docSlug)

	assert.Len(t, ids, 4)
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
