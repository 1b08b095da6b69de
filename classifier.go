package smile_request_report

const (
	IgoIDField                = "igoId"
	CmoPatientIDField         = "cmoPatientId"
	CmoSampleIDFieldsField    = "cmoSampleIdFields"
	NormalizedPatientIDField  = "normalizedPatientId"
	SpecimenTypeField         = "specimenType"
	SampleOriginField         = "sampleOrigin"
	CmoSampleClassField       = "cmoSampleClass"
	SampleTypeField           = "sampleType"
	NaToExtractField          = "naToExtract"
	BaitSetField              = "baitSet"
	InvestigatorSampleIDField = "investigatorSampleId"
)

// FieldGroup is a set of fields needed for label generation. Any of several
// conditions can satisfy the group; when none does, every name in Fields is
// reported as missing.
type FieldGroup struct {
	Name      string
	Fields    []string
	Satisfied func(SampleRecord) bool
}

// SampleCompleteness lists the fields a single sample is missing.
type SampleCompleteness struct {
	LabelGenMissingFields       []string
	OtherEssentialMissingFields []string
}

// Complete is true when nothing is missing.
func (sc SampleCompleteness) Complete() bool {
	return len(sc.LabelGenMissingFields) == 0 && len(sc.OtherEssentialMissingFields) == 0
}

// Classifier decides which label generation and other essential fields a
// sample is missing. It holds no state beyond its field registry.
type Classifier struct {
	labelGenGroups       []FieldGroup
	otherEssentialFields []string
}

// NewClassifier returns a classifier using the label generation groups and
// the fields Voyager needs.
func NewClassifier() *Classifier {
	return &Classifier{
		labelGenGroups:       LabelGenGroups(),
		otherEssentialFields: []string{InvestigatorSampleIDField, BaitSetField},
	}
}

// LabelGenGroups returns the label generation groups in report order.
func LabelGenGroups() []FieldGroup {
	return []FieldGroup{
		{
			Name:      "patient id",
			Fields:    []string{CmoPatientIDField, NormalizedPatientIDField},
			Satisfied: hasPatientID,
		},
		{
			Name:      "sample type abbreviation",
			Fields:    []string{SpecimenTypeField, SampleOriginField, CmoSampleClassField},
			Satisfied: hasAnyAbbreviation(SpecimenTypeField, SampleOriginField, CmoSampleClassField),
		},
		{
			Name:      "nucleic acid abbreviation",
			Fields:    []string{SampleTypeField, NaToExtractField, BaitSetField},
			Satisfied: hasNucleicAcidAbbreviation,
		},
	}
}

// OtherEssentialFields returns a copy of the presence-only field list.
func (c *Classifier) OtherEssentialFields() []string {
	return append([]string(nil), c.otherEssentialFields...)
}

// Classify reports the missing fields of one sample.
func (c *Classifier) Classify(s SampleRecord) SampleCompleteness {
	var sc SampleCompleteness
	for _, group := range c.labelGenGroups {
		if !group.Satisfied(s) {
			sc.LabelGenMissingFields = append(sc.LabelGenMissingFields, group.Fields...)
		}
	}
	for _, f := range c.otherEssentialFields {
		if !s.Has(f) {
			sc.OtherEssentialMissingFields = append(sc.OtherEssentialMissingFields, f)
		}
	}
	return sc
}

func hasPatientID(s SampleRecord) bool {
	if s.Field(CmoPatientIDField).NonEmpty() {
		return true
	}
	idFields, ok := s.Nested(CmoSampleIDFieldsField)
	return ok && idFields.Has(NormalizedPatientIDField)
}

// "null" as a string is as good as empty for the abbreviation fields.
func hasAnyAbbreviation(fields ...string) func(SampleRecord) bool {
	return func(s SampleRecord) bool {
		for _, f := range fields {
			v := s.Field(f)
			if v.Present && !v.Is("", "null") {
				return true
			}
		}
		return false
	}
}

func hasNucleicAcidAbbreviation(s SampleRecord) bool {
	idFields, ok := s.Nested(CmoSampleIDFieldsField)
	if !ok || !idFields.Has(SampleTypeField) {
		return false
	}
	return idFields.Field(SampleTypeField).NonEmpty() ||
		idFields.Field(NaToExtractField).NonEmpty() ||
		s.Field(BaitSetField).NonEmpty()
}
