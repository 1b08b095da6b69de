package smile_request_report

import (
	"strings"
)

// RequestJSON is a logged request with one complete sample and one that is
// missing label generation and Voyager fields.
var RequestJSON = `
{
  "requestId": "IGO_TEST_REQUEST",
  "projectId": "22022",
  "recipe": "GENESET101_BAITS",
  "projectManagerName": "marge simpson",
  "labHeadName": "bart simpson",
  "labHeadEmail": "bart@mskcc.org",
  "investigatorName": "lisa simpson",
  "investigatorEmail": "lisa@mskcc.org",
  "isCmoRequest": true,
  "bicAnalysis": false,
  "samples": [
    {
      "igoId": "22022_CC_3",
      "cmoSampleName": "brooklyn sluggers",
      "sampleName": "IGO_TEST_SAMPLE",
      "sampleType": "Normal",
      "oncotreeCode": "TPLL",
      "cmoPatientId": "C-TX6DNG",
      "investigatorSampleId": "LMNO_4396_N",
      "species": "Human",
      "sex": "F",
      "tumorOrNormal": "Normal",
      "preservation": "EDTA-Streck",
      "specimenType": "Blood",
      "sampleOrigin": "Buffy Coat",
      "cmoSampleClass": "Normal",
      "tissueLocation": "Blood",
      "baitSet": "GENESET101_BAITS",
      "cmoSampleIdFields": {
        "naToExtract": "",
        "sampleType": "Buffy Coat",
        "normalizedPatientId": "MRN_REDACTED",
        "recipe": "GENESET101_BAITS"
      }
    },
    {
      "igoId": "22022_CC_4",
      "sampleName": "IGO_TEST_SAMPLE_2",
      "cmoPatientId": "",
      "specimenType": "null",
      "sampleOrigin": "",
      "baitSet": "",
      "cmoSampleIdFields": {
        "naToExtract": "",
        "sampleType": ""
      }
    }
  ]
}
`

// RequestJSONSummaryLine is the report line for RequestJSON logged as COMPLETED.
var RequestJSONSummaryLine = "IGO_TEST_REQUEST\tCOMPLETED\t22022\ttrue\t2\t1\t" +
	"22022_CC_4: LABEL_GEN_MISSING_FIELDS: cmoPatientId,normalizedPatientId,specimenType,sampleOrigin,cmoSampleClass,sampleType,naToExtract,baitSet; " +
	"OTHER_ESSENTIAL_MISSING_FIELDS: investigatorSampleId"

// LogHeader is the header line of a request log.
const LogHeader = "date\tstatus\trequest_json\tmessage"

// LogLine builds one request log line the way the request handler writes it.
func LogLine(date, status, requestJSON string) string {
	return strings.Join([]string{date, status, compactJSON(requestJSON), "request processed"}, "\t")
}

// RequestLog builds a whole log from lines, header first.
func RequestLog(lines ...string) string {
	return LogHeader + "\n" + strings.Join(lines, "\n") + "\n"
}

func compactJSON(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
