package dian

import (
	"fmt"
	"strings"
	"unicode"
)

// pesos para el cálculo del dígito de verificación NIT (Orden Administrativa 4 de 1989, DIAN).
// Se aplican a los dígitos del NIT alineados a la derecha.
var nitWeights = [15]int{71, 67, 59, 53, 47, 43, 41, 37, 29, 23, 19, 17, 13, 7, 3}

// NormalizeNIT deja el NIT como lo usa la tabla de terceros: solo dígitos y sin dígito de verificación.
// Acepta "900.123.456-7", "900123456-7", " 900123456 ". Si no hay guion el valor se toma completo.
func NormalizeNIT(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.LastIndex(s, "-"); i > 0 {
		s = s[:i]
	}
	return string(extractDigits(s))
}

// ComputeNITVerificationDigit calcula el dígito de verificación (módulo 11) del NIT sin DV.
func ComputeNITVerificationDigit(nit string) (byte, error) {
	digits := extractDigits(nit)
	if len(digits) == 0 {
		return 0, fmt.Errorf("dian: NIT vacío")
	}
	if len(digits) > len(nitWeights) {
		return 0, fmt.Errorf("dian: NIT demasiado largo (%d dígitos)", len(digits))
	}
	offset := len(nitWeights) - len(digits)
	var sum int
	for i, d := range digits {
		sum += int(d-'0') * nitWeights[offset+i]
	}
	remainder := sum % 11
	if remainder == 0 || remainder == 1 {
		return byte('0' + remainder), nil
	}
	return byte('0' + (11 - remainder)), nil
}

// ValidateNITVerificationDigit valida un NIT escrito con DV ("900123456-7").
func ValidateNITVerificationDigit(taxID string) error {
	s := strings.TrimSpace(taxID)
	i := strings.LastIndex(s, "-")
	if i <= 0 || i == len(s)-1 {
		return fmt.Errorf("dian: NIT %q no incluye dígito de verificación", taxID)
	}
	expected, err := ComputeNITVerificationDigit(s[:i])
	if err != nil {
		return err
	}
	dv := extractDigits(s[i+1:])
	if len(dv) != 1 || dv[0] != expected {
		return fmt.Errorf("dian: dígito de verificación del NIT inválido: esperado %c, recibido %q", expected, s[i+1:])
	}
	return nil
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			out = append(out, byte(r))
		}
	}
	return out
}
