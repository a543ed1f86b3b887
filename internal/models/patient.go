package models

// Field 患者字段名
type Field string

const (
	FieldFirstName           Field = "first_name"
	FieldLastName            Field = "last_name"
	FieldDateOfBirth         Field = "date_of_birth"
	FieldMedicalRecordNumber Field = "medical_record_number"
	FieldDiagnosis           Field = "diagnosis"
)

// CoreFields are always extracted and scored.
var CoreFields = []Field{FieldFirstName, FieldLastName, FieldDateOfBirth}

// ExtendedFields are only extracted when extended extraction is enabled.
var ExtendedFields = []Field{FieldMedicalRecordNumber, FieldDiagnosis}

// PatientFields 从文档中推断出的患者身份字段
// An empty string means the field could not be resolved.
type PatientFields struct {
	FirstName           string `json:"first_name,omitempty"`
	LastName            string `json:"last_name,omitempty"`
	DateOfBirth         string `json:"date_of_birth,omitempty"`
	MedicalRecordNumber string `json:"medical_record_number,omitempty"`
	Diagnosis           string `json:"diagnosis,omitempty"`
}

func (p PatientFields) Get(f Field) string {
	switch f {
	case FieldFirstName:
		return p.FirstName
	case FieldLastName:
		return p.LastName
	case FieldDateOfBirth:
		return p.DateOfBirth
	case FieldMedicalRecordNumber:
		return p.MedicalRecordNumber
	case FieldDiagnosis:
		return p.Diagnosis
	}
	return ""
}

func (p *PatientFields) Set(f Field, value string) {
	switch f {
	case FieldFirstName:
		p.FirstName = value
	case FieldLastName:
		p.LastName = value
	case FieldDateOfBirth:
		p.DateOfBirth = value
	case FieldMedicalRecordNumber:
		p.MedicalRecordNumber = value
	case FieldDiagnosis:
		p.Diagnosis = value
	}
}

// Has reports whether the field was resolved.
func (p PatientFields) Has(f Field) bool {
	return p.Get(f) != ""
}

// IsEmpty reports whether no field was resolved at all.
func (p PatientFields) IsEmpty() bool {
	return p == PatientFields{}
}
