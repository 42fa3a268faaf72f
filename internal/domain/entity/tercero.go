package entity

// Tercero registro de identidad tributaria (tabla "DIAN tercero"). NIT es la llave primaria.
type Tercero struct {
	NIT                  string `json:"nit"`
	NumeroIdentificacion string `json:"numero_de_identificacion,omitempty"`
	TipoDocumento        string `json:"tipo_de_documento,omitempty"`
	TipoContribuyente    string `json:"tipo_de_contribuyente,omitempty"`
	PrimerApellido       string `json:"primer_apellido,omitempty"`
	SegundoApellido      string `json:"segundo_apellido,omitempty"`
	PrimerNombre         string `json:"primer_nombre,omitempty"`
	OtrosNombres         string `json:"otros_nombres,omitempty"`
	RazonSocial          string `json:"razon_social,omitempty"`
	NombreComercial      string `json:"nombre_comercial,omitempty"`
	NombreCompleto       string `json:"nombre_completo,omitempty"`
	DireccionPrincipal   string `json:"direccion_principal,omitempty"`
	CorreoElectronico    string `json:"correo_electronico,omitempty"`
	Telefono1            string `json:"telefono_1,omitempty"`
	Telefono2            string `json:"telefono_2,omitempty"`
	CodigoPostal         string `json:"codigo_postal,omitempty"`
	CiudadMunicipio      string `json:"ciudad_municipio,omitempty"`
	Departamento         string `json:"departamento,omitempty"`
	Pais                 string `json:"pais,omitempty"`
}

// DisplayName nombre para etiquetas: nombre completo, si no razón social.
func (t *Tercero) DisplayName() string {
	if t.NombreCompleto != "" {
		return t.NombreCompleto
	}
	return t.RazonSocial
}

// UpsertFields campos que se sobrescriben cuando el tercero se actualiza desde un documento.
// Los campos de persona natural y de identificación no se tocan.
func (t *Tercero) UpsertFields() map[string]string {
	return map[string]string{
		"razon_social":        t.RazonSocial,
		"direccion_principal": t.DireccionPrincipal,
		"codigo_postal":       t.CodigoPostal,
		"ciudad_municipio":    t.CiudadMunicipio,
		"departamento":        t.Departamento,
		"pais":                t.Pais,
		"correo_electronico":  t.CorreoElectronico,
		"telefono_1":          t.Telefono1,
	}
}
