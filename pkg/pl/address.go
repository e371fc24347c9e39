package pl

import (
	"strings"
	"unicode"
)

// SplitStreet separa "ulica numer" en calle y número de casa: el corte se hace en el primer
// espacio seguido de un dígito. street2 se concatena antes de buscar el corte.
func SplitStreet(street, street2 string) (name, number string) {
	full := strings.TrimSpace(street + " " + street2)
	runes := []rune(full)
	for i := 0; i+1 < len(runes); i++ {
		if unicode.IsSpace(runes[i]) && unicode.IsDigit(runes[i+1]) {
			rest := string(runes[i+1:])
			// el resto se corta otra vez si hay un segundo número separado
			if j := indexSpaceDigit([]rune(rest)); j >= 0 {
				rest = string([]rune(rest)[:j])
			}
			return string(runes[:i]), rest
		}
	}
	return full, ""
}

func indexSpaceDigit(runes []rune) int {
	for i := 0; i+1 < len(runes); i++ {
		if unicode.IsSpace(runes[i]) && unicode.IsDigit(runes[i+1]) {
			return i
		}
	}
	return -1
}
