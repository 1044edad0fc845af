package importer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpattn/klinik/internal/domain"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

func TestBuildTemplateMatchesHeaderContract(t *testing.T) {
	registry := DefaultRegistry()

	for _, name := range registry.Names() {
		imp, _ := registry.Get(name)
		t.Run(name, func(t *testing.T) {
			data, err := BuildTemplate(imp)
			if err != nil {
				t.Fatalf("build template: %v", err)
			}

			f, err := excelize.OpenReader(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("open template: %v", err)
			}
			defer f.Close()

			sheets := f.GetSheetList()
			if len(sheets) != 2 || sheets[0] != imp.Title() || sheets[1] != instructionSheet {
				t.Fatalf("unexpected sheets %v", sheets)
			}

			rows, err := f.GetRows(imp.Title())
			if err != nil {
				t.Fatalf("read rows: %v", err)
			}
			fields := imp.Fields()
			if len(rows) == 0 || len(rows[0]) != len(fields) {
				t.Fatalf("unexpected header row %v", rows)
			}
			for i, field := range fields {
				if rows[0][i] != field.Name {
					t.Fatalf("column %d: expected %q, got %q", i, field.Name, rows[0][i])
				}
			}

			help, err := f.GetRows(instructionSheet)
			if err != nil {
				t.Fatalf("read instructions: %v", err)
			}
			if len(help) != len(fields)+1 || help[0][0] != "Kolom" {
				t.Fatalf("unexpected instructions %v", help)
			}
		})
	}
}

func TestTemplateExampleRowImports(t *testing.T) {
	for _, name := range []string{"diagnosa", "departemen", "laboratorium", "inventory"} {
		t.Run(name, func(t *testing.T) {
			store := newMemStore()
			svc := newTestService(store)
			scope := testScope()
			store.seedDepartment(domain.NewDepartment(scope, "Laboratorium", nil, uuid.New()))

			data, err := svc.ExportTemplate(name)
			if err != nil {
				t.Fatalf("export template: %v", err)
			}
			path := filepath.Join(t.TempDir(), TemplateFileName(name))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				t.Fatalf("write template: %v", err)
			}

			report, err := svc.Import(context.Background(), Request{Kind: name, FilePath: path, Scope: scope, Actor: uuid.New()})
			if err != nil {
				t.Fatalf("import template: %v", err)
			}
			if !report.Succeeded() || report.TotalRows != 1 || report.Created != 1 {
				t.Fatalf("unexpected report %+v", report)
			}
		})
	}
}

func TestExportTemplateUnknownKind(t *testing.T) {
	svc := newTestService(newMemStore())
	if _, err := svc.ExportTemplate("pasien"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
