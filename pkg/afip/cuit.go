package afip

import (
	"fmt"
	"unicode"
)

// pesos del dígito verificador de la CUIT (módulo 11), aplicados a los 10 primeros dígitos.
var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// ValidateCUIT valida una CUIT/CUIL con o sin guiones ("20-12345678-6" o "20123456786").
func ValidateCUIT(cuit string) error {
	digits := extractDigits(cuit)
	if len(digits) != 11 {
		return fmt.Errorf("afip: la CUIT debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	expected, err := ComputeCUITVerificationDigit(string(digits[:10]))
	if err != nil {
		return err
	}
	if digits[10] != expected {
		return fmt.Errorf("afip: dígito verificador de CUIT inválido: esperado %c, recibido %c", expected, digits[10])
	}
	return nil
}

// ComputeCUITVerificationDigit calcula el dígito verificador para los 10 primeros dígitos.
func ComputeCUITVerificationDigit(prefix string) (byte, error) {
	digits := extractDigits(prefix)
	if len(digits) < 10 {
		return 0, fmt.Errorf("afip: se requieren 10 dígitos para calcular el verificador, se encontraron %d", len(digits))
	}
	var sum int
	for i, d := range digits[:10] {
		sum += int(d-'0') * cuitWeights[i]
	}
	v := 11 - sum%11
	switch v {
	case 11:
		return '0', nil
	case 10:
		// ARCA reasigna el prefijo en este caso; se usa 9 como en el cálculo oficial para tipo 23.
		return '9', nil
	}
	return byte('0' + v), nil
}

// FormatCUIT devuelve la CUIT con guiones: XX-XXXXXXXX-X.
func FormatCUIT(cuit string) string {
	d := extractDigits(cuit)
	if len(d) != 11 {
		return cuit
	}
	return string(d[:2]) + "-" + string(d[2:10]) + "-" + string(d[10:])
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
