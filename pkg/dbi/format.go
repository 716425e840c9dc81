package dbi

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var imageExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "webp", "svg"}

// anyInLine matches what "." matches in a browser regex: anything but a line
// terminator. Go's "." also accepts \r and the Unicode separators.
const anyInLine = `[^\n\r\x{2028}\x{2029}]`

var (
	imageURLPattern = regexp.MustCompile(`^` + foldASCII("http") + `(?:s|S)?://(?:` + foldASCII("www") + `\.)?` +
		`[\w\-]+(?:\.[\w\-]+)+/?` + anyInLine + `*\.(?:` + foldExtensions() + `)(?:\?` + anyInLine + `*)?$`)
	labelDelimiters = regexp.MustCompile(`[-_ ]`)
)

// foldASCII makes s case-insensitive letter by letter. A global (?i) would
// also fold \w onto non-ASCII runes such as U+017F.
func foldASCII(s string) string {
	var b strings.Builder
	for _, r := range s {
		lower, upper := strings.ToLower(string(r)), strings.ToUpper(string(r))
		if lower == upper {
			b.WriteString(regexp.QuoteMeta(string(r)))
			continue
		}
		b.WriteString("[" + lower + upper + "]")
	}
	return b.String()
}

func foldExtensions() string {
	folded := make([]string, len(imageExtensions))
	for i, ext := range imageExtensions {
		folded[i] = foldASCII(ext)
	}
	return strings.Join(folded, "|")
}

// ValidateImageURL reports whether s looks like an http(s) link to an image
// file. Nothing is fetched.
func ValidateImageURL(s string) bool {
	return imageURLPattern.MatchString(s)
}

// CleanLabel turns a raw classifier label such as "n02123045-tabby_cat" into
// "Tabby cat". The first segment is always dropped as the class prefix, so a
// label without any delimiter comes back empty.
func CleanLabel(label string) string {
	segments := labelDelimiters.Split(label, -1)
	cleaned := strings.Join(segments[1:], " ")
	if cleaned == "" {
		return ""
	}

	first, size := utf8.DecodeRuneInString(cleaned)
	if first == utf8.RuneError && size == 1 {
		return cleaned
	}
	return strings.ToUpper(string(first)) + cleaned[size:]
}

// FormatConfidence renders c as a percentage with two decimals. Negative zero
// prints as "0.00%" and infinities as "Infinity%", the way browsers print them.
func FormatConfidence(confidence float64) string {
	v := confidence * 100
	switch {
	case v == 0:
		v = 0
	case math.IsInf(v, 1):
		return "Infinity%"
	case math.IsInf(v, -1):
		return "-Infinity%"
	}

	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}
