package validation

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var windowsDeviceNames = map[string]bool{
	"CON": true, "AUX": true, "PRN": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"LPT1": true, "LPT2": true, "LPT3": true,
}

// SecureFilename turns an uploaded file name into one that is safe to show
// and to store. Latin and Cyrillic letters survive, accents are dropped.
// The result may be empty.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if allowedFilenameRune(r) {
			b.WriteRune(r)
		}
	}
	name = strings.Trim(b.String(), "._")

	if name != "" {
		base, _, _ := strings.Cut(name, ".")
		if windowsDeviceNames[strings.ToUpper(base)] {
			name = "_" + name
		}
	}
	return name
}

func allowedFilenameRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.' || r == '-':
		return true
	case r >= 'А' && r <= 'я', r == 'ё' || r == 'Ё':
		return true
	}
	return false
}
