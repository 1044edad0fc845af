package validator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func inventoryValidator() *RowValidator {
	return NewRowValidator(
		FieldDefinition{Name: "nama", Type: FieldTypeString, Required: true, MaxLength: 10},
		FieldDefinition{Name: "kategori", Type: FieldTypeString, MaxLength: 20},
		FieldDefinition{Name: "harga", Type: FieldTypeDecimal, Required: true, NonNegative: true},
		FieldDefinition{Name: "stok", Type: FieldTypeInteger, Required: true, NonNegative: true},
	)
}

func TestValidateCoercesAndTrims(t *testing.T) {
	v := inventoryValidator()

	result := v.Validate(map[string]string{
		"nama":     "  Kasa  ",
		"kategori": "   ",
		"harga":    "Rp 1.500,50",
		"stok":     "12.0",
		"unknown":  "ignored",
	})

	if !result.IsValid {
		t.Fatalf("expected valid row, got errors: %+v", result.Errors)
	}
	if result.String("nama") != "Kasa" {
		t.Fatalf("expected trimmed name, got %q", result.String("nama"))
	}
	if result.OptionalString("kategori") != nil {
		t.Fatalf("blank optional must be absent, got %q", *result.OptionalString("kategori"))
	}
	if !result.Decimal("harga").Equal(decimal.RequireFromString("1500.50")) {
		t.Fatalf("unexpected price %s", result.Decimal("harga"))
	}
	if result.Int("stok") != 12 {
		t.Fatalf("unexpected stock %d", result.Int("stok"))
	}
}

func TestValidateCollectsEveryFailure(t *testing.T) {
	v := inventoryValidator()

	result := v.Validate(map[string]string{
		"nama":     "",
		"kategori": "this category is far too long",
		"harga":    "-1",
		"stok":     "2.5",
	})

	if result.IsValid {
		t.Fatalf("expected invalid row")
	}
	want := "nama wajib diisi; kategori maksimal 20 karakter; harga tidak boleh negatif; stok harus berupa bilangan bulat"
	if got := result.Messages(); got != want {
		t.Fatalf("unexpected messages:\n got: %s\nwant: %s", got, want)
	}
}

func TestValidateRejectsNonNumeric(t *testing.T) {
	v := inventoryValidator()

	result := v.Validate(map[string]string{"nama": "Kasa", "harga": "gratis", "stok": "1"})
	if result.IsValid || result.Errors[0].Field != "harga" || result.Errors[0].Message != "harga harus berupa angka" {
		t.Fatalf("unexpected result %+v", result.Errors)
	}
}

func TestMaxLengthCountsRunes(t *testing.T) {
	v := NewRowValidator(FieldDefinition{Name: "nama", Type: FieldTypeString, Required: true, MaxLength: 4})

	if result := v.Validate(map[string]string{"nama": "éééé"}); !result.IsValid {
		t.Fatalf("four runes should fit, got %+v", result.Errors)
	}
}

func TestIsBlankIgnoresColumnsOutsideContract(t *testing.T) {
	v := inventoryValidator()

	if !v.IsBlank(map[string]string{"nama": " ", "catatan": "something"}) {
		t.Fatalf("expected blank row")
	}
	if v.IsBlank(map[string]string{"stok": "0"}) {
		t.Fatalf("expected non-blank row")
	}
}

func TestParseDecimalFormats(t *testing.T) {
	cases := map[string]string{
		"1500":          "1500",
		"1500.25":       "1500.25",
		"12,5":          "12.5",
		"1.500.000":     "1500000",
		"1.500,50":      "1500.5",
		"1,500,000":     "1500000",
		"1,500.50":      "1500.5",
		"Rp 25.000,00":  "25000",
		"Rp 12.500":     "12500",
		"Rp. 1.500.000": "1500000",
		"12.500":        "12500",
		"0.500":         "0.5",
		"12.5":          "12.5",
	}

	for raw, want := range cases {
		got, err := ParseDecimal(raw)
		if err != nil {
			t.Fatalf("ParseDecimal(%q) returned error: %v", raw, err)
		}
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("ParseDecimal(%q) = %s, want %s", raw, got, want)
		}
	}

	for _, raw := range []string{"abc", "1.2,3,4", ",", "1.50.000"} {
		if _, err := ParseDecimal(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseDecimalRupiahSpellingsAgree(t *testing.T) {
	for _, raw := range []string{"Rp 12.500", "Rp 12.500,00", "12.500", "12500", "Rp12.500"} {
		got, err := ParseDecimal(raw)
		if err != nil {
			t.Fatalf("ParseDecimal(%q) returned error: %v", raw, err)
		}
		if !got.Equal(decimal.NewFromInt(12500)) {
			t.Fatalf("ParseDecimal(%q) = %s, want 12500", raw, got)
		}
	}
}

func TestValidateRejectsIntegersOutsideColumnRange(t *testing.T) {
	v := inventoryValidator()

	for _, raw := range []string{"18446744073709551615", "3000000000", "-3000000000"} {
		result := v.Validate(map[string]string{"nama": "Kasa", "harga": "1", "stok": raw})
		if result.IsValid {
			t.Fatalf("stok %q should be rejected, got value %v", raw, result.Values["stok"])
		}
		if got := result.Messages(); got != "stok di luar jangkauan" {
			t.Fatalf("stok %q: unexpected message %q", raw, got)
		}
	}

	result := v.Validate(map[string]string{"nama": "Kasa", "harga": "1", "stok": "2147483647"})
	if !result.IsValid || result.Int("stok") != 2147483647 {
		t.Fatalf("max int32 should fit, got %+v", result.Errors)
	}
}

func TestValidateRejectsDecimalsBeyondStoredScale(t *testing.T) {
	v := inventoryValidator()

	result := v.Validate(map[string]string{"nama": "Kasa", "harga": "1500,125", "stok": "1"})
	if result.IsValid || result.Messages() != "harga maksimal 2 angka di belakang koma" {
		t.Fatalf("unexpected result %+v", result.Errors)
	}

	result = v.Validate(map[string]string{"nama": "Kasa", "harga": "1500.250", "stok": "1"})
	if !result.IsValid || !result.Decimal("harga").Equal(decimal.RequireFromString("1500.25")) {
		t.Fatalf("trailing zeros within scale should pass, got %+v", result.Errors)
	}
}
