package dian

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Municipio entrada de la tabla paramétrica Municipios.xml de la DIAN (códigos DANE).
type Municipio struct {
	Code           string `json:"codigo" yaml:"codigo"`
	Name           string `json:"nombre" yaml:"nombre"`
	DepartmentCode string `json:"codigo_departamento" yaml:"codigo_departamento"`
	Department     string `json:"departamento" yaml:"departamento"`
}

type parametros struct {
	Tabla struct {
		Valores []valor `xml:"valor"`
	} `xml:"tabla"`
}

type valor struct {
	Cod    string `xml:"cod,attr"`
	Nombre string `xml:"nombre,attr"`
	Otro   struct {
		Codigo string `xml:"codigo,attr"`
		Valor  string `xml:"valor,attr"`
	} `xml:"otro"`
}

// ParseMunicipios lee Municipios.xml (publicado en ISO-8859-1) y devuelve los municipios
// ordenados por código. Las filas sin código, nombre o departamento se descartan.
func ParseMunicipios(r io.Reader) ([]Municipio, error) {
	var p parametros
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decodificar municipios: %w", err)
	}

	out := make([]Municipio, 0, len(p.Tabla.Valores))
	for _, v := range p.Tabla.Valores {
		m := Municipio{
			Code:           strings.TrimSpace(v.Cod),
			Name:           strings.TrimSpace(v.Nombre),
			DepartmentCode: strings.TrimSpace(v.Otro.Codigo),
			Department:     strings.TrimSpace(v.Otro.Valor),
		}
		if m.Code == "" || m.Name == "" || m.DepartmentCode == "" || m.Department == "" {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
