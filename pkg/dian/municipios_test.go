package dian_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/va-app/va-dian/pkg/dian"
)

const municipiosXML = `<?xml version="1.0" encoding="ISO-8859-1"?>
<parametros>
  <tabla>
    <valor cod="05001" nombre="Medellín"><otro codigo="05" valor="Antioquia"/></valor>
    <valor cod="11001" nombre="Bogotá, D.C."><otro codigo="11" valor="Bogotá"/></valor>
    <valor cod="" nombre="Sin código"><otro codigo="99" valor="X"/></valor>
    <valor cod="05002" nombre="Abejorral"><otro codigo="05" valor="Antioquia"/></valor>
  </tabla>
</parametros>`

func TestParseMunicipios_DecodificaLatin1YOrdena(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(municipiosXML))
	require.NoError(t, err)

	got, err := dian.ParseMunicipios(bytes.NewReader(latin1))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "05001", got[0].Code)
	assert.Equal(t, "Medellín", got[0].Name)
	assert.Equal(t, "05002", got[1].Code)
	assert.Equal(t, dian.Municipio{Code: "11001", Name: "Bogotá, D.C.", DepartmentCode: "11", Department: "Bogotá"}, got[2])
}

func TestParseMunicipios_XMLInvalido(t *testing.T) {
	_, err := dian.ParseMunicipios(bytes.NewReader([]byte("<parametros><tabla>")))
	assert.Error(t, err)
}
