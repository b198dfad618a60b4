package notes

import (
	"encoding/json"
	"strings"
)

// Kind is the value type of a field
type Kind int

const (
	KindString Kind = iota
	KindInteger
)

func (k Kind) String() string {
	if k == KindInteger {
		return "integer"
	}
	return "string"
}

// UnsetInteger marks an integer field the conversation did not mention.
// Zero is a real count and must stay distinguishable.
const UnsetInteger int64 = -1

// datePattern is DD/MM/YYYY, with the empty string allowed for "not mentioned"
const datePattern = `^((0[1-9]|[12][0-9]|3[01])/(0[1-9]|1[0-2])/\d{4})?$`

// FieldSpec describes one extracted field. The same descriptor drives
// reconciliation, validation, the model schema, the form and the CRM push.
type FieldSpec struct {
	Name        string
	Label       string
	Kind        Kind
	Required    bool
	Pattern     string
	AllowList   bool   // value must be one of Schema.AllowList
	CRMProperty string // company property, empty when pushed elsewhere
	Description string
}

// Schema is the ordered field set of an extraction record
type Schema struct {
	Name      string
	Fields    []FieldSpec
	AllowList []string

	allowed map[string]bool
	index   map[string]int
}

// NewSchema builds a schema and indexes its fields and allow-list
func NewSchema(name string, fields []FieldSpec, allowList []string) *Schema {
	s := &Schema{
		Name:      name,
		Fields:    fields,
		AllowList: allowList,
		allowed:   make(map[string]bool, len(allowList)),
		index:     make(map[string]int, len(fields)),
	}
	for _, v := range allowList {
		if v = strings.TrimSpace(v); v != "" {
			s.allowed[v] = true
		}
	}
	for i, f := range fields {
		s.index[f.Name] = i
	}
	return s
}

// Field looks up a field by name
func (s *Schema) Field(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.Fields[i], true
}

// Allowed reports whether v is a member of the allow-list
func (s *Schema) Allowed(v string) bool {
	return s.allowed[strings.TrimSpace(v)]
}

// Label returns the human label of a field, or a title-cased name for unknown fields
func (s *Schema) Label(name string) string {
	if f, ok := s.Field(name); ok && f.Label != "" {
		return f.Label
	}
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Empty returns a record with every field set to its empty value
func (s *Schema) Empty() Record {
	rec := make(Record, len(s.Fields))
	for _, f := range s.Fields {
		if f.Kind == KindInteger {
			rec[f.Name] = UnsetInteger
		} else {
			rec[f.Name] = ""
		}
	}
	return rec
}

// JSONSchema renders the strict structured-output schema sent to the model
// and used to validate its answer.
func (s *Schema) JSONSchema() json.RawMessage {
	properties := make(map[string]any, len(s.Fields))
	required := make([]string, 0, len(s.Fields))

	for _, f := range s.Fields {
		prop := map[string]any{
			"type":        f.Kind.String(),
			"description": f.Description,
		}
		if f.Pattern != "" {
			prop["pattern"] = f.Pattern
		}
		if f.AllowList {
			enum := make([]string, 0, len(s.AllowList)+1)
			enum = append(enum, "")
			for _, v := range s.AllowList {
				if v = strings.TrimSpace(v); v != "" {
					enum = append(enum, v)
				}
			}
			prop["enum"] = enum
		}
		properties[f.Name] = prop
		// strict structured outputs require every property to be listed
		required = append(required, f.Name)
	}

	doc := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
	data, _ := json.Marshal(doc)
	return data
}

// SalesSchema is the post-sales notes field set for the given TMS allow-list
func SalesSchema(tmsOptions []string) *Schema {
	return NewSchema("sales_notes_extraction", []FieldSpec{
		{
			Name:        "company_org_key_people",
			Label:       "Company Org & Key People",
			Kind:        KindString,
			Required:    true,
			CRMProperty: "company_org___key_people",
			Description: "Company organizational structure and key stakeholders. Include: decision makers, project sponsors, technical contacts, operations managers, finance contacts, and their roles/responsibilities. Note reporting structures, who has budget authority, who will be day-to-day users, and any internal dynamics that could impact implementation success.",
		},
		{
			Name:        "project_manager_firstname",
			Label:       "Project Manager First Name",
			Kind:        KindString,
			Required:    true,
			Description: "Project manager first name",
		},
		{
			Name:        "project_manager_lastname",
			Label:       "Project Manager Last Name",
			Kind:        KindString,
			Required:    true,
			Description: "Project manager last name",
		},
		{
			Name:        "decision_maker_firstname",
			Label:       "Decision Maker First Name",
			Kind:        KindString,
			Required:    true,
			Description: "Decision maker first name",
		},
		{
			Name:        "decision_maker_lastname",
			Label:       "Decision Maker Last Name",
			Kind:        KindString,
			Required:    true,
			Description: "Decision maker last name",
		},
		{
			Name:        "warning_note",
			Label:       "Warnings Note",
			Kind:        KindString,
			Required:    true,
			CRMProperty: "warning_note",
			Description: "Critical warnings, red flags, or risk factors that Customer Success should be aware of. Include: difficult personalities, previous implementation failures, budget constraints, timeline pressures, internal resistance, compliance issues, technical limitations, or any behavioral patterns that could impact project success.",
		},
		{
			Name:        "current_tms",
			Label:       "Current TMS",
			Kind:        KindString,
			Required:    true,
			AllowList:   true,
			CRMProperty: "tms",
			Description: "Current Transport Management System in use. Only set it when the transcript names a system from the allowed values; otherwise leave it empty.",
		},
		{
			Name:        "start_date_constraints",
			Label:       "Start Date & Constraints",
			Kind:        KindString,
			Required:    true,
			Pattern:     datePattern,
			CRMProperty: "mrr_start_date",
			Description: "Desired project start date. THE FORMAT MUST BE DD/MM/YYYY. Leave empty when no date is mentioned.",
		},
		{
			Name:        "number_sites_entities",
			Label:       "Number of Sites/Entities",
			Kind:        KindInteger,
			Required:    true,
			CRMProperty: "nombre_d_agences",
			Description: "Total number of physical locations, warehouses, distribution centers, or business entities involved in the implementation. Use -1 when the number is not mentioned.",
		},
		{
			Name:        "number_truckers",
			Label:       "Number of Truckers",
			Kind:        KindInteger,
			Required:    true,
			CRMProperty: "nom_de_conducteurs_total",
			Description: "Total number of drivers/truckers who will use the system. Use -1 when the number is not mentioned.",
		},
		{
			Name:        "activities_transport_details",
			Label:       "Activities/Transport Details",
			Kind:        KindString,
			Required:    true,
			CRMProperty: "activity_notes",
			Description: "Specific transportation activities and cargo types handled. Include: types of goods transported, special handling requirements, temperature-controlled shipments, hazardous materials, international vs domestic routes, delivery patterns, and any unique operational needs.",
		},
		{
			Name:        "group_network_details",
			Label:       "Group/Network Details",
			Kind:        KindString,
			Required:    true,
			CRMProperty: "group___network_detail",
			Description: "Company's network affiliations and group memberships. Include: pallet networks, industry associations, partner relationships, franchise structures, parent company relationships, and any external dependencies that could affect implementation.",
		},
		{
			Name:        "cross_dock_details",
			Label:       "Cross Dock Details",
			Kind:        KindString,
			Required:    true,
			CRMProperty: "cross_dock_notes",
			Description: "Cross-docking operations and tracking requirements. Include: cross-dock facility details, volume of cross-docked shipments, tracking label requirements, status update needs at each dock passage, and any specific operational workflows.",
		},
	}, tmsOptions)
}
