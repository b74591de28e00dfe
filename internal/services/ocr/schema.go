package ocr

import "github.com/claimlens/claimlens/internal/models"

// Supported document type tags.
const (
	DocTypeClaimForm     = "claim_form"
	DocTypeInvoice       = "invoice"
	DocTypeMedicalRecord = "medical_record"
	DocTypeIDCard        = "id_card"
	DocTypeOther         = "other"
)

// fieldMapping is the static lookup of expected structured fields per
// document type.
var fieldMapping = map[string][]string{
	DocTypeClaimForm:     {"claim_number", "claimant_name", "date_of_service", "provider_name", "diagnosis", "amount"},
	DocTypeInvoice:       {"invoice_number", "date", "vendor_name", "total_amount", "line_items"},
	DocTypeMedicalRecord: {"patient_name", "date_of_birth", "diagnosis", "treatment", "provider"},
	DocTypeIDCard:        {"name", "id_number", "date_of_birth", "address"},
	DocTypeOther:         {"key_information"},
}

// ResolveFieldSchema maps a document type tag to its expected field names.
// Unknown tags resolve to the generic "other" schema.
func ResolveFieldSchema(documentType string) models.FieldSchema {
	fields, ok := fieldMapping[documentType]
	if !ok {
		documentType = DocTypeOther
		fields = fieldMapping[DocTypeOther]
	}

	// Copy so callers cannot mutate the lookup table.
	out := make([]string, len(fields))
	copy(out, fields)

	return models.FieldSchema{
		DocumentType: documentType,
		Fields:       out,
	}
}

// DocumentTypes returns the supported document type tags.
func DocumentTypes() []string {
	return []string{DocTypeClaimForm, DocTypeInvoice, DocTypeMedicalRecord, DocTypeIDCard, DocTypeOther}
}
