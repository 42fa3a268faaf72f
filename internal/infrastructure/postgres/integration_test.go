//go:build integration

package postgres_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/va-app/va-dian/internal/domain"
	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/repository"
	"github.com/va-app/va-dian/internal/domain/tercero"
	"github.com/va-app/va-dian/internal/infrastructure/postgres"
	"github.com/va-app/va-dian/pkg/config"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("erp_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.WithInitScripts(filepath.Join("testdata", "schema.sql")),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 4}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func exec(t *testing.T, pool *pgxpool.Pool, sql string, args ...any) {
	t.Helper()
	_, err := pool.Exec(context.Background(), sql, args...)
	require.NoError(t, err)
}

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

// ── tests ────────────────────────────────────────────────────────────────────

func TestPostgres(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	t.Run("RecordStore resuelve proveedor y trata tablas ausentes como vacías", func(t *testing.T) {
		exec(t, pool, `INSERT INTO "tabDIAN tercero" (name, razon_social, creation) VALUES ('900123456', 'ACME SAS', now())`)
		exec(t, pool, `INSERT INTO "tabSupplier" (name, custom_dian_tercero, creation) VALUES ('SUP-1', '900123456', now())`)

		store := postgres.NewRecordStore(pool)
		v, found, err := store.GetField(ctx, "Supplier", "SUP-1", "custom_dian_tercero")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "900123456", v)

		_, found, err = store.GetField(ctx, "Employee", "EMP-1", "custom_dian_tercero")
		require.NoError(t, err)
		assert.False(t, found)

		r := tercero.NewResolver(store, tercero.DefaultTables())
		label, err := r.ResolvePartyLabel(ctx,
			entity.PartyReference{Type: entity.PartyTypeSupplier, ID: "SUP-1"}, entity.VoucherReference{})
		require.NoError(t, err)
		assert.Equal(t, "900123456: ACME SAS", label)

		recs, err := store.Find(ctx, "Supplier", repository.Filter{"custom_dian_tercero": "900123456"}, "supplier_name")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		_, hasName := recs[0]["supplier_name"]
		assert.False(t, hasName)
	})

	t.Run("TerceroRepo upsert no pisa campos de persona natural", func(t *testing.T) {
		repo := postgres.NewTerceroRepository(pool)
		created, err := repo.Upsert(ctx, &entity.Tercero{NIT: "800111222", RazonSocial: "Uno", NombreCompleto: "Juan Uno"})
		require.NoError(t, err)
		assert.True(t, created)

		created, err = repo.Upsert(ctx, &entity.Tercero{NIT: "800111222", RazonSocial: "Uno SAS", NombreCompleto: "Otro"})
		require.NoError(t, err)
		assert.False(t, created)

		got, err := repo.GetByNIT(ctx, "800111222")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Uno SAS", got.RazonSocial)
		assert.Equal(t, "Juan Uno", got.NombreCompleto)

		list, err := repo.Search(ctx, "uno", 10, 0)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Rename mueve el documento y sus adjuntos en una transacción", func(t *testing.T) {
		tx := postgres.NewTxRunner(pool)
		err := tx.RunDocuments(ctx, func(docs repository.DIANDocumentRepository, files repository.FileRepository) error {
			if err := docs.Create(ctx, &entity.DIANDocument{Name: "tmp-1", XML: "/private/files/a.xml", Status: entity.DIANDocumentStatusDraft}); err != nil {
				return err
			}
			return files.Create(ctx, &entity.File{
				Name: "F-1", FileName: "a.xml", FileURL: "/private/files/a.xml", IsPrivate: true,
				AttachedToType: "DIAN document", AttachedToName: "tmp-1", AttachedToField: "xml",
			})
		})
		require.NoError(t, err)

		docs := postgres.NewDIANDocumentRepository(pool)
		doc, err := docs.GetByName(ctx, "tmp-1")
		require.NoError(t, err)
		doc.XMLCufe = "abc"
		require.NoError(t, docs.Update(ctx, doc))

		err = tx.RunDocuments(ctx, func(docs repository.DIANDocumentRepository, _ repository.FileRepository) error {
			return docs.Rename(ctx, "tmp-1", "UUID-1")
		})
		require.NoError(t, err)

		files := postgres.NewFileRepository(pool)
		attached, err := files.ListAttachedTo(ctx, "DIAN document", "UUID-1")
		require.NoError(t, err)
		require.Len(t, attached, 1)
		assert.True(t, attached[0].IsPrivate)

		byCufe, err := docs.GetByCufe(ctx, "abc")
		require.NoError(t, err)
		require.NotNil(t, byCufe)
		assert.Equal(t, "UUID-1", byCufe.Name)

		err = docs.Create(ctx, &entity.DIANDocument{Name: "tmp-2", XMLCufe: "abc"})
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})

	t.Run("GLEntryRepo filtra por cuentas, fechas y anulados", func(t *testing.T) {
		exec(t, pool, `INSERT INTO "tabAccount" (name, account_name, is_group, lft, rgt) VALUES
			('2365 - Retención', 'Retención', 1, 1, 6),
			('236505 - Salarios', 'Salarios', 0, 2, 3),
			('236540 - Compras', 'Compras', 0, 4, 5)`)
		exec(t, pool, `INSERT INTO "tabGL Entry" (name, posting_date, account, party_type, party, voucher_type, voucher_no, debit, credit, company, is_cancelled, creation) VALUES
			('GL-1', '2025-01-10', '236540 - Compras', 'Supplier', 'SUP-1', 'Purchase Invoice', 'PINV-1', 0, 25000.5, 'VA', 0, now()),
			('GL-2', '2025-01-11', '236540 - Compras', 'Supplier', 'SUP-1', 'Purchase Invoice', 'PINV-2', 0, 100, 'VA', 1, now()),
			('GL-3', '2025-03-01', '236505 - Salarios', NULL, NULL, 'Journal Entry', 'JV-1', 0, 50, 'VA', 0, now())`)

		accounts := postgres.NewAccountRepository(pool)
		leaves, err := accounts.ListLeavesBetween(ctx, 1, 6)
		require.NoError(t, err)
		assert.Equal(t, []string{"236505 - Salarios", "236540 - Compras"}, leaves)

		from, to := day("2025-01-01"), day("2025-01-31")
		gl := postgres.NewGLEntryRepository(pool)
		entries, err := gl.List(ctx, repository.GLEntryFilter{
			Company: "VA", FromDate: &from, ToDate: &to, Accounts: leaves, ExcludeCancelled: true,
		})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "GL-1", entries[0].Name)
		assert.True(t, entries[0].Credit.Equal(decimal.RequireFromString("25000.5")))
		assert.Equal(t, entity.PartyTypeSupplier, entries[0].Party.Type)
	})

	t.Run("CertificateRepo reemplaza detalles al actualizar", func(t *testing.T) {
		exec(t, pool, `INSERT INTO "tabDIAN_Certificado_Config" (name, company, certificate_type) VALUES ('CFG-1', 'VA', 'RET_FUENTE')`)
		exec(t, pool, `INSERT INTO "tabDIAN_Certificado_Config_Cuenta" (name, parent, idx, base_account, retention_account) VALUES
			('C-2', 'CFG-1', 2, '5135', '236540'), ('C-1', 'CFG-1', 1, '5105', '236505')`)

		certs := postgres.NewCertificateRepository(pool)
		cfg, err := certs.GetConfig(ctx, "CFG-1")
		require.NoError(t, err)
		require.NotNil(t, cfg)
		require.Len(t, cfg.Accounts, 2)
		assert.Equal(t, "5105", cfg.Accounts[0].BaseAccount)

		from, to := day("2025-01-01"), day("2025-12-31")
		c := &entity.Certificate{
			Name: "CERT-1", Config: "CFG-1", CertificateType: "RET_FUENTE", Tercero: "900123456",
			FromDate: from, ToDate: to, Year: 2025,
			TotalBase: decimal.NewFromInt(1000), TotalRetention: decimal.NewFromInt(25),
			Details: []entity.CertificateDetail{
				{BaseAccount: "5105", RetentionAccount: "236505", BaseAmount: decimal.NewFromInt(1000), RetainedAmount: decimal.NewFromInt(25)},
			},
		}
		tx := postgres.NewTxRunner(pool)
		require.NoError(t, tx.RunCertificates(ctx, func(r repository.CertificateRepository) error {
			return r.Create(ctx, c)
		}))

		c.TotalRetention = decimal.NewFromInt(40)
		c.Details = append(c.Details, entity.CertificateDetail{
			BaseAccount: "5135", RetentionAccount: "236540", RetainedAmount: decimal.NewFromInt(15),
		})
		require.NoError(t, tx.RunCertificates(ctx, func(r repository.CertificateRepository) error {
			return r.Update(ctx, c)
		}))

		got, err := certs.FindExisting(ctx, "CFG-1", "900123456", from, to)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Len(t, got.Details, 2)
		assert.True(t, got.TotalRetention.Equal(decimal.NewFromInt(40)))

		list, err := certs.ListByPeriod(ctx, "CFG-1", from, to)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		require.NoError(t, tx.RunCertificates(ctx, func(r repository.CertificateRepository) error {
			return r.Delete(ctx, "CERT-1")
		}))
		gone, err := certs.FindExisting(ctx, "CFG-1", "900123456", from, to)
		require.NoError(t, err)
		assert.Nil(t, gone)
		var details int
		require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM "tabDIAN_Certificado_Detalle" WHERE parent = 'CERT-1'`).Scan(&details))
		assert.Zero(t, details)
		assert.ErrorIs(t, certs.Delete(ctx, "CERT-1"), domain.ErrNotFound)
	})
}
