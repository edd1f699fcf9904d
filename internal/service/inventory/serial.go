package inventory

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	serialPrefixLength  = 3
	defaultSerialPrefix = "EQ"
)

// serialPrefix строит префикс серийного номера из названия оборудования:
// первые три буквы или цифры в верхнем регистре ("Racket" -> "RAC")
func serialPrefix(name string) string {
	var b strings.Builder
	for _, r := range name {
		if b.Len() >= serialPrefixLength {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	if b.Len() == 0 {
		return defaultSerialPrefix
	}
	return b.String()
}

// newSerial генерирует серийный номер вида <PREFIX>-<uuid8>
func newSerial(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(id[:8])
}

// newSerials генерирует n серийных номеров
func newSerials(prefix string, n int) []string {
	serials := make([]string, n)
	for i := range serials {
		serials[i] = newSerial(prefix)
	}
	return serials
}
