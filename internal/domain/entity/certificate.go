package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CertificateConfig parametrización de un certificado de retención (tabla DIAN_Certificado_Config).
type CertificateConfig struct {
	Name            string
	Company         string
	CertificateType string // RET_FUENTE | RET_IVA | RET_ICA
	Municipio       string
	Accounts        []CertificateConfigAccount
}

// CertificateConfigAccount par cuenta base / cuenta de retención de una configuración.
type CertificateConfigAccount struct {
	BaseAccount      string
	RetentionAccount string
}

// Certificate certificado de retención emitido a un tercero para un periodo.
type Certificate struct {
	Name            string
	Config          string
	CertificateType string
	Tercero         string
	FromDate        time.Time
	ToDate          time.Time
	Year            int
	Municipio       string
	TotalBase       decimal.Decimal
	TotalRetention  decimal.Decimal
	Details         []CertificateDetail
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CertificateDetail detalle por par de cuentas.
type CertificateDetail struct {
	BaseAccount      string
	RetentionAccount string
	Concepto         string
	BaseAmount       decimal.Decimal
	RetainedAmount   decimal.Decimal
}
