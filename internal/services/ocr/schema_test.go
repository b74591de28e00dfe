package ocr

import (
	"reflect"
	"testing"
)

func TestResolveFieldSchema(t *testing.T) {
	tests := []struct {
		name         string
		documentType string
		wantType     string
		wantFields   []string
	}{
		{
			name:         "claim form",
			documentType: DocTypeClaimForm,
			wantType:     "claim_form",
			wantFields:   []string{"claim_number", "claimant_name", "date_of_service", "provider_name", "diagnosis", "amount"},
		},
		{
			name:         "invoice",
			documentType: DocTypeInvoice,
			wantType:     "invoice",
			wantFields:   []string{"invoice_number", "date", "vendor_name", "total_amount", "line_items"},
		},
		{
			name:         "medical record",
			documentType: DocTypeMedicalRecord,
			wantType:     "medical_record",
			wantFields:   []string{"patient_name", "date_of_birth", "diagnosis", "treatment", "provider"},
		},
		{
			name:         "id card",
			documentType: DocTypeIDCard,
			wantType:     "id_card",
			wantFields:   []string{"name", "id_number", "date_of_birth", "address"},
		},
		{
			name:         "other",
			documentType: DocTypeOther,
			wantType:     "other",
			wantFields:   []string{"key_information"},
		},
		{
			name:         "unknown type falls back to other",
			documentType: "tax_return",
			wantType:     "other",
			wantFields:   []string{"key_information"},
		},
		{
			name:         "empty type falls back to other",
			documentType: "",
			wantType:     "other",
			wantFields:   []string{"key_information"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveFieldSchema(tt.documentType)
			if got.DocumentType != tt.wantType {
				t.Errorf("DocumentType = %q, want %q", got.DocumentType, tt.wantType)
			}
			if !reflect.DeepEqual(got.Fields, tt.wantFields) {
				t.Errorf("Fields = %v, want %v", got.Fields, tt.wantFields)
			}
		})
	}
}

func TestResolveFieldSchema_ReturnsCopy(t *testing.T) {
	schema := ResolveFieldSchema(DocTypeInvoice)
	schema.Fields[0] = "mutated"

	again := ResolveFieldSchema(DocTypeInvoice)
	if again.Fields[0] != "invoice_number" {
		t.Errorf("mutation leaked into the lookup table: %v", again.Fields)
	}
}

func TestDocumentTypes(t *testing.T) {
	types := DocumentTypes()
	want := []string{"claim_form", "invoice", "medical_record", "id_card", "other"}
	if !reflect.DeepEqual(types, want) {
		t.Errorf("DocumentTypes() = %v, want %v", types, want)
	}

	for _, dt := range types {
		if _, ok := fieldMapping[dt]; !ok {
			t.Errorf("advertised type %q has no field mapping", dt)
		}
	}
}
