package smile_request_report

import (
	"fmt"
	"strconv"
	"strings"
)

// ReportColumns is the column order of every report line.
var ReportColumns = []string{
	"REQUEST_ID",
	"LOGGED_REQUEST_STATUS",
	"PROJECT_ID",
	"IS_CMO_REQUEST",
	"TOTAL_NUM_SAMPLES",
	"FAILED_NUM_SAMPLES",
	"DETAILED_SAMPLE_ERRORS",
}

const (
	labelGenMissingKey       = "LABEL_GEN_MISSING_FIELDS"
	otherEssentialMissingKey = "OTHER_ESSENTIAL_MISSING_FIELDS"
	sampleErrorSeparator     = " | "
)

func FormatHeader() string {
	return strings.Join(ReportColumns, "\t")
}

// FormatSummary renders a summary as one tab-separated line, without the
// trailing newline.
func FormatSummary(rs RequestSummary) string {
	return strings.Join([]string{
		rs.RequestID,
		rs.LoggedStatus,
		rs.ProjectID,
		strconv.FormatBool(rs.IsCmoRequest),
		strconv.Itoa(rs.TotalSamples),
		strconv.Itoa(rs.FailedSamples),
		FormatSampleErrors(rs.SampleErrors),
	}, "\t")
}

// FormatSampleErrors renders the DETAILED_SAMPLE_ERRORS column.
func FormatSampleErrors(errs []SampleError) string {
	details := make([]string, 0, len(errs))
	for _, se := range errs {
		details = append(details, fmt.Sprintf("%s: %s; %s",
			se.SampleID,
			missingPart(labelGenMissingKey, se.Missing.LabelGenMissingFields),
			missingPart(otherEssentialMissingKey, se.Missing.OtherEssentialMissingFields)))
	}
	return strings.Join(details, sampleErrorSeparator)
}

func missingPart(key string, fields []string) string {
	if len(fields) == 0 {
		return ""
	}
	return key + ": " + strings.Join(fields, ",")
}
