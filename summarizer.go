package smile_request_report

import (
	"encoding/json"
	"fmt"
)

const (
	requestIDKey    = "requestId"
	projectIDKey    = "projectId"
	isCmoRequestKey = "isCmoRequest"
	samplesKey      = "samples"
)

// RequestRecord is the part of a request document the report needs. Pointer
// fields are nil when the key is absent or null.
type RequestRecord struct {
	RequestID    *string        `json:"requestId"`
	ProjectID    *string        `json:"projectId"`
	IsCmoRequest *bool          `json:"isCmoRequest"`
	Samples      []SampleRecord `json:"samples"`
}

// SampleError pairs a failing sample with what it is missing.
type SampleError struct {
	SampleID string
	Missing  SampleCompleteness
}

// RequestSummary is one row of the report.
type RequestSummary struct {
	RequestID     string
	LoggedStatus  string
	ProjectID     string
	IsCmoRequest  bool
	TotalSamples  int
	FailedSamples int
	SampleErrors  []SampleError
}

// UnmarshalJSON looks the mandatory keys up by their exact name. A key that
// differs only in case is treated as absent.
func (rr *RequestRecord) UnmarshalJSON(b []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	*rr = RequestRecord{}
	fields := []struct {
		key    string
		target any
	}{
		{requestIDKey, &rr.RequestID},
		{projectIDKey, &rr.ProjectID},
		{isCmoRequestKey, &rr.IsCmoRequest},
		{samplesKey, &rr.Samples},
	}
	for _, f := range fields {
		raw, ok := doc[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, f.target); err != nil {
			return fmt.Errorf("Failed to decode %q: %w", f.key, err)
		}
	}
	return nil
}

// ParseRequest decodes a request document.
func ParseRequest(data []byte) (RequestRecord, error) {
	return UnmarshalT[RequestRecord](data)
}

// RequestSummarizer runs the classifier over every sample of a request.
type RequestSummarizer struct {
	classifier *Classifier
}

func NewRequestSummarizer(classifier *Classifier) *RequestSummarizer {
	return &RequestSummarizer{classifier: classifier}
}

// Summarize builds the summary of one request. Samples keep their input order
// and only incomplete samples are listed.
func (rs *RequestSummarizer) Summarize(rr RequestRecord, loggedStatus string) (RequestSummary, error) {
	switch {
	case rr.RequestID == nil:
		return RequestSummary{}, &MissingFieldError{Field: requestIDKey, SampleIndex: -1}
	case rr.ProjectID == nil:
		return RequestSummary{}, &MissingFieldError{Field: projectIDKey, SampleIndex: -1}
	case rr.IsCmoRequest == nil:
		return RequestSummary{}, &MissingFieldError{Field: isCmoRequestKey, SampleIndex: -1}
	case rr.Samples == nil:
		return RequestSummary{}, &MissingFieldError{Field: samplesKey, SampleIndex: -1}
	}

	summary := RequestSummary{
		RequestID:    *rr.RequestID,
		LoggedStatus: loggedStatus,
		ProjectID:    *rr.ProjectID,
		IsCmoRequest: *rr.IsCmoRequest,
		TotalSamples: len(rr.Samples),
	}
	for i, s := range rr.Samples {
		missing := rs.classifier.Classify(s)
		if missing.Complete() {
			continue
		}
		igoID := s.Field(IgoIDField)
		if !igoID.Present {
			return RequestSummary{}, &MissingFieldError{Field: IgoIDField, RequestID: summary.RequestID, SampleIndex: i}
		}
		summary.SampleErrors = append(summary.SampleErrors, SampleError{SampleID: igoID.Text(), Missing: missing})
	}
	summary.FailedSamples = len(summary.SampleErrors)
	return summary, nil
}

func UnmarshalT[T any](b []byte) (T, error) {
	var target T
	if err := json.Unmarshal(b, &target); err != nil {
		return target, err
	}
	return target, nil
}
