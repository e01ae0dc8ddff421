package marshal

import (
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeString converts s to UTF-16 code units. Invalid UTF-8 sequences are
// replaced by U+FFFD. The returned slice is owned by the caller.
func EncodeString(s string) []uint16 {
	if s == "" {
		return nil
	}
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil
	}
	return unitsFromBytes(b)
}

// DecodeString converts UTF-16 code units to a Go string. Unpaired surrogates
// decode to U+FFFD.
func DecodeString(units []uint16) string {
	if len(units) == 0 {
		return ""
	}
	b, err := utf16le.NewDecoder().Bytes(bytesFromUnits(units))
	if err != nil {
		return ""
	}
	return string(b)
}

// DecodeBytes decodes a UTF-16LE byte buffer read from linear memory.
func DecodeBytes(b []byte) (string, error) {
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EncodeBytes encodes s as a UTF-16LE byte buffer for linear memory.
func EncodeBytes(s string) ([]byte, error) {
	return utf16le.NewEncoder().Bytes([]byte(s))
}

func unitsFromBytes(b []byte) []uint16 {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return units
}

func bytesFromUnits(units []uint16) []byte {
	b := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(b[i*2:], u)
	}
	return b
}
