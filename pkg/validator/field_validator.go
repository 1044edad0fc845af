package validator

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// FieldType describes how a spreadsheet cell is coerced.
type FieldType string

const (
	FieldTypeString  FieldType = "STRING"
	FieldTypeDecimal FieldType = "DECIMAL"
	FieldTypeInteger FieldType = "INTEGER"
)

// DecimalScale is the number of fractional digits money columns store.
const DecimalScale = 2

var (
	minInt32 = decimal.NewFromInt(math.MinInt32)
	maxInt32 = decimal.NewFromInt(math.MaxInt32)

	// thousandsGrouped matches "12.500" and "1.500.000": dots between groups of three digits.
	thousandsGrouped = regexp.MustCompile(`^-?[1-9]\d{0,2}(\.\d{3})+$`)
)

// FieldDefinition represents one column of an import header contract
type FieldDefinition struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	MaxLength   int       `json:"maxLength,omitempty"`
	NonNegative bool      `json:"nonNegative,omitempty"`
	Description string    `json:"description,omitempty"`
	Example     string    `json:"example,omitempty"`
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return e.Message
}

// ValidationResult represents the result of validating one row. Values holds
// coerced cells: *string for text (nil when blank), decimal.Decimal and int for
// numbers.
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Errors  []ValidationError `json:"errors"`
	Values  map[string]any    `json:"-"`
}

// Messages joins the error messages in column order.
func (r ValidationResult) Messages() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = e.Message
	}
	return strings.Join(parts, "; ")
}

// String returns a required text value.
func (r ValidationResult) String(field string) string {
	if v := r.OptionalString(field); v != nil {
		return *v
	}
	return ""
}

// OptionalString returns nil when the cell was blank.
func (r ValidationResult) OptionalString(field string) *string {
	v, _ := r.Values[field].(*string)
	return v
}

func (r ValidationResult) Decimal(field string) decimal.Decimal {
	v, _ := r.Values[field].(decimal.Decimal)
	return v
}

func (r ValidationResult) Int(field string) int {
	v, _ := r.Values[field].(int)
	return v
}

// RowValidator checks raw spreadsheet cells against a fixed header contract.
type RowValidator struct {
	fields []FieldDefinition
}

// NewRowValidator creates a validator for the given columns, in template order
func NewRowValidator(fields ...FieldDefinition) *RowValidator {
	return &RowValidator{fields: fields}
}

// Fields returns the header contract in template order.
func (v *RowValidator) Fields() []FieldDefinition {
	out := make([]FieldDefinition, len(v.fields))
	copy(out, v.fields)
	return out
}

// IsBlank reports whether every column of the contract is empty. Cells outside
// the contract are ignored.
func (v *RowValidator) IsBlank(cells map[string]string) bool {
	for _, field := range v.fields {
		if strings.TrimSpace(cells[field.Name]) != "" {
			return false
		}
	}
	return true
}

// Validate trims and coerces every contract column.
func (v *RowValidator) Validate(cells map[string]string) ValidationResult {
	result := ValidationResult{
		IsValid: true,
		Errors:  []ValidationError{},
		Values:  make(map[string]any, len(v.fields)),
	}

	for _, field := range v.fields {
		raw := strings.TrimSpace(cells[field.Name])

		if raw == "" {
			if field.Required {
				result.addError(field.Name, fmt.Sprintf("%s wajib diisi", field.Name), nil)
				continue
			}
			result.Values[field.Name] = zeroValue(field.Type)
			continue
		}

		value, err := coerceValue(field, raw)
		if err != nil {
			result.addError(field.Name, err.Error(), raw)
			continue
		}
		result.Values[field.Name] = value
	}

	return result
}

func (r *ValidationResult) addError(field, message string, value any) {
	r.IsValid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message, Value: value})
}

func zeroValue(fieldType FieldType) any {
	switch fieldType {
	case FieldTypeDecimal:
		return decimal.Zero
	case FieldTypeInteger:
		return 0
	default:
		return (*string)(nil)
	}
}

func coerceValue(field FieldDefinition, raw string) (any, error) {
	switch field.Type {
	case FieldTypeDecimal:
		d, err := ParseDecimal(raw)
		if err != nil {
			return nil, fmt.Errorf("%s harus berupa angka", field.Name)
		}
		if field.NonNegative && d.IsNegative() {
			return nil, fmt.Errorf("%s tidak boleh negatif", field.Name)
		}
		if !d.Equal(d.Round(DecimalScale)) {
			return nil, fmt.Errorf("%s maksimal %d angka di belakang koma", field.Name, DecimalScale)
		}
		return d, nil
	case FieldTypeInteger:
		d, err := ParseDecimal(raw)
		if err != nil || !d.IsInteger() {
			return nil, fmt.Errorf("%s harus berupa bilangan bulat", field.Name)
		}
		// INTEGER / INT columns are 32-bit.
		if d.LessThan(minInt32) || d.GreaterThan(maxInt32) {
			return nil, fmt.Errorf("%s di luar jangkauan", field.Name)
		}
		if field.NonNegative && d.IsNegative() {
			return nil, fmt.Errorf("%s tidak boleh negatif", field.Name)
		}
		return int(d.IntPart()), nil
	default:
		if field.MaxLength > 0 && utf8.RuneCountInString(raw) > field.MaxLength {
			return nil, fmt.Errorf("%s maksimal %d karakter", field.Name, field.MaxLength)
		}
		s := raw
		return &s, nil
	}
}

// ParseDecimal accepts plain numbers ("1500.5") as well as Indonesian
// formatting ("Rp 1.500,50", "1.500.000", "Rp 12.500", "12,5"). Dots that
// split the digits into groups of three are thousand separators.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && strings.EqualFold(s[:2], "rp") {
		s = strings.TrimSpace(strings.TrimLeft(s[2:], "."))
	}
	s = strings.ReplaceAll(s, " ", "")

	if thousandsGrouped.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}

	if d, err := decimal.NewFromString(s); err == nil {
		return d, nil
	}

	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")
	switch {
	case commas == 1 && (dots == 0 || strings.LastIndex(s, ".") < strings.Index(s, ",")):
		// "1.500,50" or "12,5": dots group thousands, comma is the decimal mark.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case commas > 0 && dots <= 1 && (dots == 0 || strings.LastIndex(s, ",") < strings.Index(s, ".")):
		// "1,500,000" or "1,500.50"
		s = strings.ReplaceAll(s, ",", "")
	default:
		return decimal.Zero, fmt.Errorf("invalid number %q", raw)
	}

	return decimal.NewFromString(s)
}
