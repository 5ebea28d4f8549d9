// Package mdscan provides the line-level primitives shared by the markdown
// scanners: line splitting and fenced code block tracking.
package mdscan

import (
	"regexp"
	"strings"
)

var (
	fenceOpen  = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})(.*)$")
	fenceClose = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})[ \t]*$")
)

// Lines splits text into lines. \n, \r\n and \r all terminate a line and a
// trailing terminator does not produce an empty final line.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Join is the inverse of Lines: lines joined by \n with a trailing \n.
func Join(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}

// Fence tracks whether the scan position is inside a fenced code block.
// The zero value starts outside any block.
type Fence struct {
	marker byte
	length int
	open   bool
}

// Inside reports whether a fenced block is currently open.
func (f *Fence) Inside() bool {
	return f.open
}

// Observe consumes one line and reports whether it belongs to a fenced
// block, delimiters included.
func (f *Fence) Observe(line string) bool {
	if f.open {
		if m := fenceClose.FindStringSubmatch(line); m != nil && m[1][0] == f.marker && len(m[1]) >= f.length {
			f.open = false
		}
		return true
	}
	m := fenceOpen.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	// A backtick fence's info string may not contain backticks.
	if m[1][0] == '`' && strings.Contains(m[2], "`") {
		return false
	}
	f.marker = m[1][0]
	f.length = len(m[1])
	f.open = true
	return true
}
