package dto

// GenerateCertificatesRequest cuerpo de la generación de certificados. Fechas YYYY-MM-DD.
type GenerateCertificatesRequest struct {
	Config   string `json:"certificado_config"`
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
}

// GenerateCertificatesResponse nombres de los certificados creados, actualizados y eliminados.
type GenerateCertificatesResponse struct {
	Created []string `json:"created"`
	Updated []string `json:"updated"`
	Deleted []string `json:"deleted"`
}
