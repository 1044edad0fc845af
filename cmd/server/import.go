package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rpattn/klinik/internal/domain"
	"github.com/rpattn/klinik/internal/importer"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// errImportFailed makes the process exit non-zero after the report is printed.
var errImportFailed = errors.New("import failed")

type importOptions struct {
	kind    string
	file    string
	company string
	plant   string
	actor   string
	dryRun  bool

	scope   domain.Scope
	actorID uuid.UUID
}

func importCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a spreadsheet of master data",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range []struct {
				flag  string
				value string
				dest  *uuid.UUID
			}{
				{"company", opts.company, &opts.scope.CompanyID},
				{"plant", opts.plant, &opts.scope.PlantID},
				{"actor", opts.actor, &opts.actorID},
			} {
				id, err := uuid.Parse(strings.TrimSpace(f.value))
				if err != nil {
					return fmt.Errorf("invalid --%s: %w", f.flag, err)
				}
				*f.dest = id
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			ctx := logger.WithContext(cmd.Context())

			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer closeStore()

			report, err := newImportService(store, cfg).Import(ctx, importer.Request{
				Kind:     opts.kind,
				FilePath: opts.file,
				Scope:    opts.scope,
				Actor:    opts.actorID,
				DryRun:   opts.dryRun,
			})
			if err != nil && errors.Is(err, importer.ErrUnknownKind) {
				return fmt.Errorf("%w (available: %s)", err, strings.Join(importer.DefaultRegistry().Names(), ", "))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(report); encErr != nil {
				return encErr
			}
			if err != nil {
				return err
			}
			if !report.Succeeded() {
				return errImportFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "", "Kind to import: diagnosa, departemen, laboratorium, inventory (required)")
	cmd.Flags().StringVar(&opts.file, "file", "", "Path to .xlsx, .xls or .csv file (required)")
	cmd.Flags().StringVar(&opts.company, "company", "", "Company UUID (required)")
	cmd.Flags().StringVar(&opts.plant, "plant", "", "Plant UUID (required)")
	cmd.Flags().StringVar(&opts.actor, "actor", "", "UUID of the user recorded as creator (required)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate and reconcile, then roll back")

	for _, name := range []string{"kind", "file", "company", "plant", "actor"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func templateCmd() *cobra.Command {
	var kind, out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the import template of a kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			imp, ok := importer.DefaultRegistry().Get(kind)
			if !ok {
				return fmt.Errorf("%w: %q (available: %s)", importer.ErrUnknownKind, kind,
					strings.Join(importer.DefaultRegistry().Names(), ", "))
			}
			data, err := importer.BuildTemplate(imp)
			if err != nil {
				return err
			}
			if out == "" {
				out = importer.TemplateFileName(kind)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "template written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Kind of template (required)")
	cmd.Flags().StringVar(&out, "out", "", "Output path (default template_import_<kind>.xlsx)")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}
