package smile_request_report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sample(t testing.TB, doc string) SampleRecord {
	t.Helper()
	s, err := UnmarshalT[SampleRecord]([]byte(doc))
	if err != nil {
		t.Fatalf("cannot unmarshal sample %s: %q", doc, err)
	}
	return s
}

var (
	patientIDFields   = []string{CmoPatientIDField, NormalizedPatientIDField}
	sampleTypeFields  = []string{SpecimenTypeField, SampleOriginField, CmoSampleClassField}
	nucleicAcidFields = []string{SampleTypeField, NaToExtractField, BaitSetField}
)

func TestClassifier(t *testing.T) {
	classifier := NewClassifier()

	tests := []struct {
		name string
		doc  string
		want SampleCompleteness
	}{
		{
			name: "complete sample",
			doc:  `{"igoId":"S1","cmoPatientId":"PT1","specimenType":"Tumor","cmoSampleIdFields":{"sampleType":"DNA"},"investigatorSampleId":"inv1","baitSet":"bait1"}`,
			want: SampleCompleteness{},
		},
		{
			name: "sample with only an igo id",
			doc:  `{"igoId":"S2"}`,
			want: SampleCompleteness{
				LabelGenMissingFields: []string{
					"cmoPatientId", "normalizedPatientId",
					"specimenType", "sampleOrigin", "cmoSampleClass",
					"sampleType", "naToExtract", "baitSet",
				},
				OtherEssentialMissingFields: []string{"investigatorSampleId", "baitSet"},
			},
		},
		{
			name: "cmo patient id satisfies patient group without id fields",
			doc:  `{"cmoPatientId":"PT1","sampleOrigin":"biopsy","cmoSampleIdFields":{"sampleType":"DNA"},"investigatorSampleId":"i","baitSet":"b"}`,
			want: SampleCompleteness{},
		},
		{
			name: "normalized patient id satisfies patient group whatever its value",
			doc:  `{"cmoPatientId":"","sampleOrigin":"biopsy","cmoSampleIdFields":{"normalizedPatientId":"","sampleType":"DNA"},"investigatorSampleId":"i","baitSet":"b"}`,
			want: SampleCompleteness{},
		},
		{
			name: "empty cmo patient id without id fields",
			doc:  `{"cmoPatientId":"","sampleOrigin":"biopsy","investigatorSampleId":"i","baitSet":"b"}`,
			want: SampleCompleteness{
				LabelGenMissingFields: append(append([]string{}, patientIDFields...), nucleicAcidFields...),
			},
		},
		{
			name: "one usable sample type abbreviation",
			doc:  `{"cmoPatientId":"PT1","specimenType":"","sampleOrigin":"biopsy","cmoSampleClass":"null","cmoSampleIdFields":{"sampleType":"DNA"},"investigatorSampleId":"i","baitSet":"b"}`,
			want: SampleCompleteness{},
		},
		{
			name: "all sample type abbreviations empty",
			doc:  `{"cmoPatientId":"PT1","specimenType":"","sampleOrigin":"","cmoSampleClass":"","cmoSampleIdFields":{"sampleType":"DNA"},"investigatorSampleId":"i","baitSet":"b"}`,
			want: SampleCompleteness{LabelGenMissingFields: sampleTypeFields},
		},
		{
			name: "string null is as good as empty",
			doc:  `{"cmoPatientId":"PT1","specimenType":"null","sampleOrigin":"null","cmoSampleIdFields":{"sampleType":"DNA"},"investigatorSampleId":"i","baitSet":"b"}`,
			want: SampleCompleteness{LabelGenMissingFields: sampleTypeFields},
		},
		{
			name: "empty nested sample type falls back to na to extract",
			doc:  `{"cmoPatientId":"PT1","specimenType":"Tumor","cmoSampleIdFields":{"sampleType":"","naToExtract":"RNA"},"investigatorSampleId":"i","baitSet":""}`,
			want: SampleCompleteness{},
		},
		{
			name: "empty nested sample type falls back to bait set",
			doc:  `{"cmoPatientId":"PT1","specimenType":"Tumor","cmoSampleIdFields":{"sampleType":""},"investigatorSampleId":"i","baitSet":"bait1"}`,
			want: SampleCompleteness{},
		},
		{
			name: "absent na to extract does not fault",
			doc:  `{"cmoPatientId":"PT1","specimenType":"Tumor","cmoSampleIdFields":{"sampleType":""},"investigatorSampleId":"i"}`,
			want: SampleCompleteness{
				LabelGenMissingFields:       nucleicAcidFields,
				OtherEssentialMissingFields: []string{"baitSet"},
			},
		},
		{
			name: "nested sample type key is required",
			doc:  `{"cmoPatientId":"PT1","specimenType":"Tumor","cmoSampleIdFields":{"naToExtract":"DNA"},"investigatorSampleId":"i","baitSet":"bait1"}`,
			want: SampleCompleteness{LabelGenMissingFields: nucleicAcidFields},
		},
		{
			name: "bait set present but empty",
			doc:  `{"cmoPatientId":"PT1","specimenType":"Tumor","cmoSampleIdFields":{"sampleType":""},"investigatorSampleId":"","baitSet":""}`,
			want: SampleCompleteness{LabelGenMissingFields: nucleicAcidFields},
		},
		{
			name: "top level sample type is not checked",
			doc:  `{"cmoPatientId":"PT1","specimenType":"Tumor","sampleType":"DNA","investigatorSampleId":"i","baitSet":"b"}`,
			want: SampleCompleteness{LabelGenMissingFields: nucleicAcidFields},
		},
		{
			name: "null values count as present",
			doc:  `{"cmoPatientId":null,"specimenType":null,"cmoSampleIdFields":{"sampleType":null},"investigatorSampleId":null,"baitSet":null}`,
			want: SampleCompleteness{},
		},
		{
			name: "id fields that are not an object have no keys",
			doc:  `{"cmoPatientId":"","specimenType":"Tumor","cmoSampleIdFields":"C-123","investigatorSampleId":"i","baitSet":"b"}`,
			want: SampleCompleteness{
				LabelGenMissingFields: append(append([]string{}, patientIDFields...), nucleicAcidFields...),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(sample(t, tt.doc))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Classify() mismatch (-want +got):\n%s", diff)
			}
			if got.Complete() != tt.want.Complete() {
				t.Errorf("Complete() = %v, want %v", got.Complete(), tt.want.Complete())
			}
		})
	}
}

func TestClassifierIsIdempotent(t *testing.T) {
	classifier := NewClassifier()
	s := sample(t, `{"igoId":"S2","cmoSampleIdFields":{"sampleType":""},"baitSet":""}`)

	first := classifier.Classify(s)
	second := classifier.Classify(s)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second Classify() differs (-first +second):\n%s", diff)
	}

	first.LabelGenMissingFields[0] = "mutated"
	third := classifier.Classify(s)
	if diff := cmp.Diff(second, third); diff != "" {
		t.Errorf("Classify() shares state with earlier results (-want +got):\n%s", diff)
	}
}

func TestLabelGenGroupsAreIndependentCopies(t *testing.T) {
	groups := LabelGenGroups()
	groups[0].Fields[0] = "mutated"

	if got := LabelGenGroups()[0].Fields[0]; got != CmoPatientIDField {
		t.Errorf("got %q want %q", got, CmoPatientIDField)
	}
	want := []string{InvestigatorSampleIDField, BaitSetField}
	if diff := cmp.Diff(want, NewClassifier().OtherEssentialFields()); diff != "" {
		t.Errorf("OtherEssentialFields() mismatch (-want +got):\n%s", diff)
	}
}

func TestField(t *testing.T) {
	s := sample(t, `{"empty":"","text":"abc","null":null,"number":7,"nullString":"null"}`)

	tests := []struct {
		name         string
		field        string
		wantPresent  bool
		wantNull     bool
		wantNonEmpty bool
		wantText     string
	}{
		{"absent", "missing", false, false, false, ""},
		{"empty string", "empty", true, false, false, ""},
		{"text", "text", true, false, true, "abc"},
		{"json null", "null", true, true, true, "null"},
		{"number", "number", true, false, true, "7"},
		{"string null", "nullString", true, false, true, "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := s.Field(tt.field)
			if f.Present != tt.wantPresent {
				t.Errorf("Present = %v, want %v", f.Present, tt.wantPresent)
			}
			if f.IsNull() != tt.wantNull {
				t.Errorf("IsNull() = %v, want %v", f.IsNull(), tt.wantNull)
			}
			if f.NonEmpty() != tt.wantNonEmpty {
				t.Errorf("NonEmpty() = %v, want %v", f.NonEmpty(), tt.wantNonEmpty)
			}
			if f.Text() != tt.wantText {
				t.Errorf("Text() = %q, want %q", f.Text(), tt.wantText)
			}
		})
	}
}
