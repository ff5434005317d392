package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	maxBaseNameLength  = 80
	maxExtensionLength = 10
	fallbackBaseName   = "file"
)

// SanitizeBaseName оставляет только латиницу, цифры и пробелы,
// пробелы превращает в дефисы и приводит к нижнему регистру.
// "My CV (final)" -> "my-cv-final"
func SanitizeBaseName(name string) string {
	var b strings.Builder
	pendingSpace := false

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSpace = false
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSpace = false
			b.WriteRune(r + ('a' - 'A'))
		case r == ' ' || r == '\t':
			pendingSpace = true
		}
	}

	out := b.String()
	if len(out) > maxBaseNameLength {
		out = strings.TrimRight(out[:maxBaseNameLength], "-")
	}
	if out == "" {
		return fallbackBaseName
	}
	return out
}

// SplitFileName отделяет расширение и отбрасывает путь клиента
// (браузеры на Windows иногда присылают полный путь).
func SplitFileName(declared string) (base, ext string) {
	if i := strings.LastIndexAny(declared, `/\`); i >= 0 {
		declared = declared[i+1:]
	}

	dot := strings.LastIndex(declared, ".")
	if dot <= 0 {
		return declared, ""
	}

	base, ext = declared[:dot], strings.ToLower(declared[dot+1:])
	if !isSafeExtension(ext) {
		return base, ""
	}
	return base, "." + ext
}

func isSafeExtension(ext string) bool {
	if ext == "" || len(ext) > maxExtensionLength {
		return false
	}
	for _, r := range ext {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// StoredFileName - имя, под которым файл ляжет в хранилище:
// <unix millis>-<очищенное имя><.расширение>.
// Чистая функция: одинаковые аргументы дают одинаковый результат.
func StoredFileName(now time.Time, declaredName string) string {
	base, ext := SplitFileName(declaredName)
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), SanitizeBaseName(base), ext)
}
