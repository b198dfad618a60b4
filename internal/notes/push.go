package notes

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"
)

const companyIDInvalidCode = "NOTES_COMPANY_ID_INVALID"

// startDateLayout is the DD/MM/YYYY form the model is asked for
const startDateLayout = "02/01/2006"

// CRM is the subset of the CRM client used to push notes
type CRM interface {
	UpdateCompany(ctx context.Context, id string, properties map[string]any) error
	CreateContact(ctx context.Context, properties map[string]string) (string, error)
	AssociateContactToCompany(ctx context.Context, contactID, companyID string) error
}

// ContactRole maps a pair of name fields onto a CRM buying role
type ContactRole struct {
	Label      string
	FirstField string
	LastField  string
	BuyingRole string
}

// SalesContacts are the contacts created from a sales record
var SalesContacts = []ContactRole{
	{Label: "Project Manager", FirstField: "project_manager_firstname", LastField: "project_manager_lastname", BuyingRole: "Project manager"},
	{Label: "Decision Maker", FirstField: "decision_maker_firstname", LastField: "decision_maker_lastname", BuyingRole: "DECISION_MAKER"},
}

// StepStatus is the result of one push step
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

// PushStep reports one CRM write
type PushStep struct {
	Name   string
	Status StepStatus
	Detail string
	Err    error
}

// PushReport lists every step; steps run independently of each other
type PushReport struct {
	Steps []PushStep
}

// OK reports whether no step failed
func (r PushReport) OK() bool {
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			return false
		}
	}
	return true
}

// ValidateCompanyID checks a CRM company id is a non-empty number
func ValidateCompanyID(id string) error {
	if err := validation.Validate(id, validation.Required, is.Digit); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid company id").
			WithTextCode(companyIDInvalidCode)
	}
	return nil
}

// ConvertStartDate turns DD/MM/YYYY into epoch milliseconds at UTC midnight.
// Values that do not parse are returned unchanged.
func ConvertStartDate(v string) any {
	t, err := time.ParseInLocation(startDateLayout, v, time.UTC)
	if err != nil {
		return v
	}
	return t.UnixMilli()
}

// CompanyProperties maps the non-empty fields of r onto CRM company properties
func CompanyProperties(s *Schema, r Record) map[string]any {
	props := make(map[string]any)
	for _, f := range s.Fields {
		if f.CRMProperty == "" {
			continue
		}
		v, ok := r[f.Name]
		if !ok || IsEmpty(f.Kind, v) {
			continue
		}
		if f.AllowList && !s.Allowed(r.String(f.Name)) {
			continue
		}

		switch {
		case f.Kind == KindInteger:
			n, _ := toInt64(v)
			props[f.CRMProperty] = n
		case f.Pattern != "":
			props[f.CRMProperty] = ConvertStartDate(r.String(f.Name))
		default:
			props[f.CRMProperty] = v
		}
	}
	return props
}

// Push writes r to the company and creates the role contacts. Each step is
// attempted even when an earlier one failed. The error is only set when
// nothing could be attempted.
func Push(ctx context.Context, crm CRM, s *Schema, companyID string, r Record) (PushReport, error) {
	if err := ValidateCompanyID(companyID); err != nil {
		return PushReport{}, err
	}

	var report PushReport

	props := CompanyProperties(s, r)
	companyStep := PushStep{Name: "Company data"}
	switch {
	case len(props) == 0:
		companyStep.Status = StepSkipped
		companyStep.Detail = "no company fields filled"
	default:
		if err := crm.UpdateCompany(ctx, companyID, props); err != nil {
			companyStep.Status = StepFailed
			companyStep.Err = err
		} else {
			companyStep.Status = StepOK
		}
	}
	report.Steps = append(report.Steps, companyStep)

	for _, role := range SalesContacts {
		report.Steps = append(report.Steps, pushContact(ctx, crm, companyID, role, r))
	}

	return report, nil
}

func pushContact(ctx context.Context, crm CRM, companyID string, role ContactRole, r Record) PushStep {
	step := PushStep{Name: role.Label}

	first, last := r.String(role.FirstField), r.String(role.LastField)
	if IsEmpty(KindString, first) || IsEmpty(KindString, last) {
		step.Status = StepSkipped
		step.Detail = "missing first or last name"
		return step
	}

	contactID, err := crm.CreateContact(ctx, map[string]string{
		"firstname":      first,
		"lastname":       last,
		"hs_buying_role": role.BuyingRole,
	})
	if err != nil {
		step.Status = StepFailed
		step.Err = err
		return step
	}

	if err := crm.AssociateContactToCompany(ctx, contactID, companyID); err != nil {
		step.Status = StepFailed
		step.Detail = "contact " + contactID + " created but not associated"
		step.Err = err
		return step
	}

	step.Status = StepOK
	step.Detail = "contact " + contactID
	return step
}
