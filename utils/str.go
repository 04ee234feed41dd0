package utils

import (
	"io"
	"reflect"
	"strings"
	"unicode/utf8"
	"unsafe"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func B2S(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}

func S2B(s string) []byte {
	const MaxInt32 = 1<<31 - 1
	return (*[MaxInt32]byte)(unsafe.Pointer((*reflect.StringHeader)(
		unsafe.Pointer(&s)).Data))[: len(s)&MaxInt32 : len(s)&MaxInt32]
}

// DecodeShpAttr normalizes a DBF attribute value to UTF-8. Attribute
// tables without a UTF-8 .cpg are commonly Windows-1252 encoded, which
// is where accented country names come out mangled.
func DecodeShpAttr(s string) string {
	if utf8.ValidString(s) {
		return PurifyForUtf8(s)
	}
	reader := transform.NewReader(strings.NewReader(s), charmap.Windows1252.NewDecoder())
	d, err := io.ReadAll(reader)
	if err != nil {
		return PurifyForUtf8(s)
	}
	return B2S(d)
}

func PurifyForUtf8(s string) string {
	return strings.ToValidUTF8(strings.ReplaceAll(s, "\x00", ""), "")
}
