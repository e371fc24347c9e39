package pl

import (
	"fmt"
	"unicode"
)

// pesos para el dígito de control del NIP (Rozporządzenie MF), aplicados a los 9 primeros dígitos.
var nipWeights = [9]int{6, 5, 7, 2, 3, 4, 5, 6, 7}

// ValidateNIP valida que el NIP (con o sin prefijo PL, guiones o espacios) tenga
// 10 dígitos y un dígito de control correcto según el algoritmo módulo 11.
// taxID puede ser "PL5260250274", "526-025-02-74" o "5260250274".
func ValidateNIP(taxID string) error {
	digits := ExtractDigits(taxID)
	if len(digits) != 10 {
		return fmt.Errorf("pl: NIP debe tener 10 dígitos, se encontraron %d", len(digits))
	}
	expected, err := ComputeNIPControlDigit(string(digits[:9]))
	if err != nil {
		return err
	}
	if digits[9] != expected {
		return fmt.Errorf("pl: dígito de control del NIP inválido: esperado %c, recibido %c", expected, digits[9])
	}
	return nil
}

// ComputeNIPControlDigit calcula el dígito de control para los 9 primeros dígitos del NIP.
// Un resto 10 no es asignable: ningún NIP válido puede terminar así.
func ComputeNIPControlDigit(taxID string) (byte, error) {
	digits := ExtractDigits(taxID)
	if len(digits) < 9 {
		return 0, fmt.Errorf("pl: se requieren 9 dígitos para calcular el dígito de control, se encontraron %d", len(digits))
	}
	var sum int
	for i, d := range digits[:9] {
		sum += int(d-'0') * nipWeights[i]
	}
	remainder := sum % 11
	if remainder == 10 {
		return 0, fmt.Errorf("pl: los dígitos %s no forman un NIP asignable", string(digits[:9]))
	}
	return byte('0' + remainder), nil
}

// DigitsOnly devuelve solo los dígitos del NIP, tal como se informa en Podmiot1/NIP.
func DigitsOnly(taxID string) string {
	return string(ExtractDigits(taxID))
}

// ExtractDigits devuelve los dígitos ASCII de s en orden.
func ExtractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
