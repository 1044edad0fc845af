package importer

import (
	"fmt"
	"strings"

	"github.com/rpattn/klinik/pkg/validator"

	"github.com/xuri/excelize/v2"
)

const instructionSheet = "Petunjuk"

// ExportTemplate returns an xlsx workbook whose first sheet carries the header
// contract of kind plus one example row.
func (s *Service) ExportTemplate(kind string) ([]byte, error) {
	imp, ok := s.registry.Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return BuildTemplate(imp)
}

// TemplateFileName is the download name for the template of kind.
func TemplateFileName(kind string) string {
	return fmt.Sprintf("template_import_%s.xlsx", kind)
}

// BuildTemplate renders the import template of imp.
func BuildTemplate(imp Importer) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := imp.Title()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to name template sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	fields := imp.Fields()
	for i, field := range fields {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, col+"1", field.Name); err != nil {
			return nil, fmt.Errorf("failed to write header %s: %w", field.Name, err)
		}
		if field.Example != "" {
			if err := f.SetCellValue(sheet, col+"2", field.Example); err != nil {
				return nil, fmt.Errorf("failed to write example %s: %w", field.Name, err)
			}
		}
		if err := f.SetColWidth(sheet, col, col, columnWidth(field)); err != nil {
			return nil, err
		}
	}

	if len(fields) > 0 {
		last, _ := excelize.ColumnNumberToName(len(fields))
		if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header: %w", err)
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := writeInstructions(f, fields, headerStyle); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}
	return buf.Bytes(), nil
}

func writeInstructions(f *excelize.File, fields []validator.FieldDefinition, headerStyle int) error {
	if _, err := f.NewSheet(instructionSheet); err != nil {
		return fmt.Errorf("failed to create instruction sheet: %w", err)
	}

	header := []any{"Kolom", "Wajib", "Tipe", "Aturan", "Keterangan"}
	if err := f.SetSheetRow(instructionSheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(instructionSheet, "A1", "E1", headerStyle); err != nil {
		return err
	}

	for i, field := range fields {
		required := "Tidak"
		if field.Required {
			required = "Ya"
		}
		row := []any{field.Name, required, typeLabel(field.Type), ruleText(field), field.Description}
		if err := f.SetSheetRow(instructionSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(instructionSheet, "A", "A", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(instructionSheet, "B", "C", 14); err != nil {
		return err
	}
	return f.SetColWidth(instructionSheet, "D", "E", 45)
}

func typeLabel(t validator.FieldType) string {
	switch t {
	case validator.FieldTypeDecimal:
		return "Angka"
	case validator.FieldTypeInteger:
		return "Bilangan bulat"
	default:
		return "Teks"
	}
}

func ruleText(field validator.FieldDefinition) string {
	var rules []string
	if field.MaxLength > 0 {
		rules = append(rules, fmt.Sprintf("maksimal %d karakter", field.MaxLength))
	}
	if field.NonNegative {
		rules = append(rules, "tidak boleh negatif")
	}
	return strings.Join(rules, ", ")
}

func columnWidth(field validator.FieldDefinition) float64 {
	width := float64(len(field.Name) + 4)
	if w := float64(len(field.Example) + 2); w > width {
		width = w
	}
	if width < 14 {
		width = 14
	}
	return width
}
