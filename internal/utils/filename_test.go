package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeBaseName(t *testing.T) {
	cases := map[string]string{
		"My CV (final)":      "my-cv-final",
		"Résumé 2026":        "rsum-2026",
		"  lots   of space ": "lots-of-space",
		"../../etc/passwd":   "etcpasswd",
		"UPPER lower 123":    "upper-lower-123",
		"___":                "file",
		"":                   "file",
		"tab\tseparated":     "tab-separated",
	}

	for in, want := range cases {
		assert.Equal(t, want, SanitizeBaseName(in), "input %q", in)
	}
}

func TestSanitizeBaseName_Truncates(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "abcd "
	}
	out := SanitizeBaseName(long)
	assert.LessOrEqual(t, len(out), maxBaseNameLength)
	assert.NotEqual(t, '-', rune(out[len(out)-1]))
}

func TestSplitFileName(t *testing.T) {
	cases := []struct {
		in, base, ext string
	}{
		{"cv.pdf", "cv", ".pdf"},
		{"My CV.PDF", "My CV", ".pdf"},
		{`C:\Users\me\cv.docx`, "cv", ".docx"},
		{"/home/me/photo.jpeg", "photo", ".jpeg"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{".bashrc", ".bashrc", ""},
		{"noext", "noext", ""},
		{"weird.p$f", "weird", ""},
	}

	for _, tc := range cases {
		base, ext := SplitFileName(tc.in)
		assert.Equal(t, tc.base, base, tc.in)
		assert.Equal(t, tc.ext, ext, tc.in)
	}
}

func TestStoredFileName(t *testing.T) {
	now := time.UnixMilli(1767225600000)

	assert.Equal(t, "1767225600000-my-cv-final.pdf", StoredFileName(now, "My CV (final).PDF"))
	assert.Equal(t, "1767225600000-file.png", StoredFileName(now, "!!!.png"))
	assert.Equal(t, "1767225600000-logo", StoredFileName(now, "logo"))

	// детерминированность
	assert.Equal(t, StoredFileName(now, "a b.pdf"), StoredFileName(now, "a b.pdf"))
	assert.NotEqual(t, StoredFileName(now, "a.pdf"), StoredFileName(now.Add(time.Millisecond), "a.pdf"))
}
