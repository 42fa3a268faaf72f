package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/va-app/va-dian/internal/application/dto"
	apptercero "github.com/va-app/va-dian/internal/application/tercero"
	domaindian "github.com/va-app/va-dian/internal/domain/dian"
	"github.com/va-app/va-dian/internal/domain/tercero"
	"github.com/va-app/va-dian/internal/infrastructure/postgres"
	"github.com/va-app/va-dian/pkg/config"
	pkgdian "github.com/va-app/va-dian/pkg/dian"
	"github.com/va-app/va-dian/pkg/jwt"
	"github.com/va-app/va-dian/pkg/logger"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dianctl",
		Short:         "Herramientas de operador para documentos DIAN y terceros",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExtractCmd(), newResolveCmd(), newTokenCmd(), newMunicipiosCmd())
	return root
}

// extract no toca la base de datos.
func newExtractCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "extract <file.xml>",
		Short: "Extrae los campos de un AttachedDocument DIAN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != outputJSON && output != outputYAML {
				return fmt.Errorf("--output debe ser %q o %q", outputJSON, outputYAML)
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := domaindian.NewExtractor(nil).Extract(data)
			if err != nil {
				return err
			}
			if doc.PayloadParseError != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "aviso: %s\n", doc.PayloadParseError)
			}
			return write(cmd.OutOrStdout(), output, doc)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "formato de salida: json|yaml")
	return cmd
}

func newResolveCmd() *cobra.Command {
	var in dto.ResolveTerceroRequest
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resuelve el tercero (NIT y etiqueta) de una línea contable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: cmd.ErrOrStderr()})

			ctx := context.Background()
			pool, err := postgres.NewPool(ctx, cfg.DB, log.Named("postgres"))
			if err != nil {
				return err
			}
			defer pool.Close()

			store := postgres.NewRecordStore(pool)
			resolver := tercero.NewResolver(store, tercero.DefaultTables())
			uc := apptercero.NewUseCase(postgres.NewTerceroRepository(pool), resolver, log.Named("tercero"))
			out, err := uc.Resolve(ctx, in)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), outputJSON, out)
		},
	}
	cmd.Flags().StringVar(&in.PartyType, "party-type", "", "tipo de parte de la línea (Supplier, Customer...)")
	cmd.Flags().StringVar(&in.Party, "party", "", "parte de la línea")
	cmd.Flags().StringVar(&in.VoucherType, "voucher-type", "", "tipo de comprobante")
	cmd.Flags().StringVar(&in.VoucherNo, "voucher-no", "", "número de comprobante")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var subject, role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un bearer token para la API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tok, err := jwt.Generate(cfg.JWT.Secret, subject, role, cfg.JWT.Issuer, cfg.JWT.Expiration)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), outputJSON, dto.TokenResponse{
				AccessToken: tok,
				TokenType:   "Bearer",
				ExpiresIn:   cfg.JWT.Expiration * 60,
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "sujeto del token (usuario u operador)")
	cmd.Flags().StringVar(&role, "role", "lector", "rol: admin|contador|lector")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

// kindMunicipio doctype donde se cargan los municipios DANE (ciudad de los certificados ICA).
const kindMunicipio = "DIAN municipio"

// municipios lee Municipios.xml de la DIAN; con --apply los carga en el ERP.
func newMunicipiosCmd() *cobra.Command {
	var apply bool
	var output string
	cmd := &cobra.Command{
		Use:   "municipios <Municipios.xml>",
		Short: "Lee la tabla paramétrica de municipios DANE y opcionalmente la carga en el ERP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			list, err := pkgdian.ParseMunicipios(f)
			if err != nil {
				return err
			}
			if !apply {
				return write(cmd.OutOrStdout(), output, list)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: cmd.ErrOrStderr()})
			ctx := context.Background()
			pool, err := postgres.NewPool(ctx, cfg.DB, log.Named("postgres"))
			if err != nil {
				return err
			}
			defer pool.Close()

			store := postgres.NewRecordStore(pool)
			for _, m := range list {
				_, err := store.Upsert(ctx, kindMunicipio, m.Code, map[string]string{
					"municipio":           m.Name,
					"codigo_departamento": m.DepartmentCode,
					"departamento":        m.Department,
				})
				if err != nil {
					return err
				}
			}
			log.Info().Int("municipios", len(list)).Msg("municipios cargados")
			return nil
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "cargar en la tabla \"DIAN municipio\" del ERP")
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "formato de salida sin --apply: json|yaml")
	return cmd
}

func write(w io.Writer, format string, v any) error {
	if format == outputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
