package validator

import (
	"errors"
	"regexp"
	"strings"
	"time"

	playground "github.com/go-playground/validator/v10"

	"github.com/feichai0017/clinical-doc-processor/internal/models"
)

var (
	personNamePattern = regexp.MustCompile(`^[a-zA-Z\s\-'.]+$`)
	dobPattern        = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

	patientValidate = newPatientValidate()
)

// patientInput mirrors the patient fields with their validation rules.
type patientInput struct {
	FirstName   string `validate:"required,min=2,max=50,personname"`
	LastName    string `validate:"required,min=2,max=50,personname"`
	DateOfBirth string `validate:"omitempty,dobformat,calendardate"`
}

var patientFieldKeys = map[string]models.Field{
	"FirstName":   models.FieldFirstName,
	"LastName":    models.FieldLastName,
	"DateOfBirth": models.FieldDateOfBirth,
}

var fieldLabels = map[models.Field]string{
	models.FieldFirstName: "First name",
	models.FieldLastName:  "Last name",
}

func newPatientValidate() *playground.Validate {
	v := playground.New()
	mustRegister(v, "personname", func(fl playground.FieldLevel) bool {
		return personNamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "dobformat", func(fl playground.FieldLevel) bool {
		return dobPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "calendardate", func(fl playground.FieldLevel) bool {
		t, err := time.Parse("01/02/2006", fl.Field().String())
		return err == nil && t.Year() >= 1
	})
	return v
}

func mustRegister(v *playground.Validate, tag string, fn playground.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// ValidatePatient checks names and date of birth for storage-grade quality.
// It returns one message per failing field, keyed by field name; an empty map
// means the record is valid. Values are trimmed before checking.
func ValidatePatient(p models.PatientFields) map[models.Field]string {
	input := patientInput{
		FirstName:   strings.TrimSpace(p.FirstName),
		LastName:    strings.TrimSpace(p.LastName),
		DateOfBirth: strings.TrimSpace(p.DateOfBirth),
	}

	problems := make(map[models.Field]string)
	err := patientValidate.Struct(input)
	if err == nil {
		return problems
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// only reachable with a malformed rule set
		panic(err)
	}
	for _, fe := range fieldErrs {
		field := patientFieldKeys[fe.StructField()]
		if _, seen := problems[field]; seen {
			continue
		}
		problems[field] = message(field, fe.Tag())
	}
	return problems
}

func message(field models.Field, tag string) string {
	if field == models.FieldDateOfBirth {
		if tag == "dobformat" {
			return "Date of birth must be in MM/DD/YYYY format"
		}
		return "Invalid date of birth"
	}

	label := fieldLabels[field]
	switch tag {
	case "required":
		return label + " is required"
	case "min", "max":
		return label + " must be between 2 and 50 characters"
	default:
		return label + " contains invalid characters"
	}
}
