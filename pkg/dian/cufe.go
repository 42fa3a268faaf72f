package dian

import (
	"regexp"
	"strings"
)

// El CUFE/CUDE es un SHA-384 en hexadecimal: 96 caracteres.
var cufePattern = regexp.MustCompile(`^[0-9a-f]{96}$`)

// IsCUFE indica si el valor tiene el formato de un CUFE/CUDE emitido por la DIAN.
// Solo valida forma; el documento recibido no trae los insumos para recalcular el hash.
func IsCUFE(s string) bool {
	return cufePattern.MatchString(strings.ToLower(strings.TrimSpace(s)))
}

// NormalizeCUFE recorta espacios y pasa a minúsculas.
func NormalizeCUFE(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
