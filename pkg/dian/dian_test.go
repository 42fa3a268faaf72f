package dian_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/va-app/va-dian/pkg/dian"
)

func TestFoldLabel_IgnoraTildesYMayusculas(t *testing.T) {
	assert.Equal(t, dian.FoldLabel("Contenedor de Factura Electrónica"), dian.FoldLabel("contenedor de factura ELECTRONICA"))
	assert.Equal(t, "contenedor de factura electronica", dian.FoldLabel("  Contenedor  de Factura Electrónica "))
}

func TestIsFacturaElectronicaLabel(t *testing.T) {
	assert.True(t, dian.IsFacturaElectronicaLabel("Contenedor de Factura Electrónica"))
	assert.True(t, dian.IsFacturaElectronicaLabel("Contenedor de Factura Electronica"))
	assert.False(t, dian.IsFacturaElectronicaLabel("Contenedor de Nota Crédito"))
	assert.False(t, dian.IsFacturaElectronicaLabel(""))
}

func TestNormalizeNIT(t *testing.T) {
	assert.Equal(t, "900123456", dian.NormalizeNIT("900.123.456-7"))
	assert.Equal(t, "900123456", dian.NormalizeNIT(" 900123456 "))
	assert.Equal(t, "", dian.NormalizeNIT(""))
}

func TestComputeNITVerificationDigit(t *testing.T) {
	// NIT de la DIAN: 800197268-4
	dv, err := dian.ComputeNITVerificationDigit("800197268")
	require.NoError(t, err)
	assert.Equal(t, byte('4'), dv)

	_, err = dian.ComputeNITVerificationDigit("")
	assert.Error(t, err)
}

func TestValidateNITVerificationDigit(t *testing.T) {
	assert.NoError(t, dian.ValidateNITVerificationDigit("800.197.268-4"))
	assert.Error(t, dian.ValidateNITVerificationDigit("800197268-5"))
	assert.Error(t, dian.ValidateNITVerificationDigit("800197268"))
}

func TestIsCUFE(t *testing.T) {
	assert.True(t, dian.IsCUFE(strings.Repeat("a1", 48)))
	assert.True(t, dian.IsCUFE(strings.ToUpper(strings.Repeat("a1", 48))))
	assert.False(t, dian.IsCUFE("abc"))
	assert.False(t, dian.IsCUFE(strings.Repeat("z", 96)))
}
