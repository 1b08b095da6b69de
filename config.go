package smile_request_report

import "errors"

var (
	errWatchWithLogFile = errors.New("--watch cannot be combined with a log file")
	errNoInput          = errors.New("either a log file or --watch is required")
	errWatchWithoutMom  = errors.New("--watch requires --momurl, --momsub and --momnrf")
)

type Config struct {
	LogFile         string `docopt:"<logfile>"`
	Watch           bool   `docopt:"--watch"`
	ContinueOnError bool   `docopt:"--continue-on-error"`
	Debug           bool   `docopt:"--debug"`
	MomUrl          string `docopt:"--momurl"`
	MomCert         string `docopt:"--momcert"`
	MomKey          string `docopt:"--momkey"`
	MomCons         string `docopt:"--momcons"`
	MomPw           string `docopt:"--mompw"`
	MomSub          string `docopt:"--momsub"`
	MomNrf          string `docopt:"--momnrf"`
	DBHostname      string `docopt:"--dbhost"`
	DBToken         string `docopt:"--dbtoken"`
	DBPort          string `docopt:"--dbport"`
	HttpPath        string `docopt:"--dbhttppath"`
	SMILESchema     string `docopt:"--smileschema"`
	SummaryTable    string `docopt:"--summarytable"`
	DBFSPath        string `docopt:"--dbfspath"`
	DLTPipeline     string `docopt:"--dltpipeline"`
	OTELTracerHost  string `docopt:"--tracerhost"`
	OTELTracerPort  string `docopt:"--tracerport"`
	ServiceName     string `docopt:"--ddservicename"`
	SlackURL        string `docopt:"--slackurl"`
	SAML2AWSBin     string `docopt:"--saml2aws"`
	SAMLProfile     string `docopt:"--saml2profile"`
	SAMLRegion      string `docopt:"--saml2region"`
	AWSSession      string `docopt:"--awssession"`
	AWSDestBucket   string `docopt:"--awsdestbucket"`
}

// Validate rejects option combinations the usage patterns let through.
func (c Config) Validate() error {
	switch {
	case c.Watch && c.LogFile != "":
		return errWatchWithLogFile
	case !c.Watch && c.LogFile == "":
		return errNoInput
	case c.Watch && (c.MomUrl == "" || c.MomSub == "" || c.MomNrf == ""):
		return errWatchWithoutMom
	}
	return nil
}

// TestConfig carries credentials for the integration tests. They skip when
// the relevant fields are empty.
var TestConfig = Config{
	DBHostname:    "",
	DBToken:       "",
	DBPort:        "443",
	HttpPath:      "",
	SMILESchema:   "",
	SummaryTable:  "",
	DBFSPath:      "",
	DLTPipeline:   "",
	SAML2AWSBin:   "",
	SAMLProfile:   "",
	SAMLRegion:    "",
	AWSSession:    "3600",
	AWSDestBucket: "",
}
