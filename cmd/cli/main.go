package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"

	"github.com/docopt/docopt-go"
	"github.com/google/uuid"
	srr "github.com/mskcc/smile-request-report"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const usage = `report-summary-requests.

Audits logged SMILE requests for the sample fields needed by label generation
and Voyager, writing one tab-separated summary line per request to stdout.

Usage:
  report-summary-requests -h | --help
  report-summary-requests <logfile> [options]
  report-summary-requests --watch --momurl=<momurl> --momcert=<momcert> --momkey=<momkey> --momcons=<momcons> --mompw=<mompw> --momsub=<momsub> --momnrf=<momnrf> [options]

Options:
  -h --help                     Show this screen.
  --watch                       Audit new requests from the messaging system instead of a log file.
  --continue-on-error           Skip log lines that cannot be parsed or lack mandatory fields.
  --debug                       Enable debug logging.
  --momurl=<momurl>             The messaging system URL.
  --momcert=<momcert>           The messaging system certificate.
  --momkey=<momkey>             The messaging system cert key.
  --momcons=<momcons>           The messaging system consumer (id).
  --mompw=<mompw>               The messaging system consumer pw.
  --momsub=<momsub>             The messaging system subject (topic).
  --momnrf=<momnrf>             The messaging system new request topic filter.
  --dbhost=<hostname>           Databricks hostname.
  --dbtoken=<token>             Databricks personal access token.
  --dbport=<port>               Databricks SQL port [default: 443].
  --dbhttppath=<path>           The HTTP path to the Databricks SQL Warehouse.
  --smileschema=<schema>        The Databricks schema where the summary table resides.
  --summarytable=<table>        The Databricks table receiving one row per request summary.
  --dbfspath=<path>             The Databricks volume path the report is uploaded to.
  --dltpipeline=<name>          The DLT pipeline to run after the report is uploaded.
  --tracerhost=<hostname>       OTel Tracer hostname.
  --tracerport=<port>           OTel Tracer port [default: 4317].
  --ddservicename=<name>        Datadog service name [default: smile-request-report].
  --slackurl=<url>              The URL to the slack channel notified when a run finishes.
  --saml2aws=<saml2aws>         The saml2aws script.
  --saml2profile=<profile>      The aws creds profile.
  --saml2region=<region>        The aws region.
  --awssession=<seconds>        The aws session duration in seconds [default: 3600].
  --awsdestbucket=<bucket>      The dest bucket for the report.
`

func setupSignalListener(cancel context.CancelFunc, logger *zap.Logger) {

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	go func() {
		// block until signal is received
		s := <-c
		logger.Info("Got signal, shutting down SMILE request report", zap.String("signal", s.String()))
		cancel()
	}()
}

func handleError(err error, message string) {
	if err != nil {
		log.Fatalf("%s: %v", message, err)
	}
}

func main() {
	args, err := docopt.ParseDoc(usage)
	handleError(err, "Arguments cannot be parsed")

	var config srr.Config
	err = args.Bind(&config)
	handleError(err, "Error binding arguments")

	logger, err := srr.NewLogger(config.Debug)
	handleError(err, "Logger cannot be created")

	if err := run(config, logger); err != nil {
		logger.Error("SMILE request report failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(config srr.Config, logger *zap.Logger) error {
	if err := config.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalListener(cancel, logger)

	if config.OTELTracerHost != "" {
		port, err := strconv.Atoi(config.OTELTracerPort)
		if err != nil {
			return fmt.Errorf("Invalid tracer port %q: %w", config.OTELTracerPort, err)
		}
		shutdownTracer, err := srr.InitTracerProvider(ctx, logger, config.OTELTracerHost, port, config.ServiceName, "prod")
		if err != nil {
			return err
		}
		defer shutdownTracer()
	}
	tracer := otel.Tracer(config.ServiceName + "-tracer")

	runID := uuid.NewString()
	logger = logger.With(zap.String("runId", runID))

	var sinks []srr.SummarySink
	if config.SummaryTable != "" {
		dbPort, err := strconv.Atoi(config.DBPort)
		if err != nil {
			return fmt.Errorf("Invalid databricks port %q: %w", config.DBPort, err)
		}
		tableService, closeTable, err := srr.NewSummaryTableService(config.DBHostname, config.HttpPath, config.DBToken, dbPort, config.SMILESchema, config.SummaryTable, runID)
		if err != nil {
			return fmt.Errorf("Summary table service cannot be created: %w", err)
		}
		defer closeTable()
		sinks = append(sinks, tableService)
	}

	auditor := srr.NewAuditor(srr.NewRequestSummarizer(srr.NewClassifier()), logger, tracer,
		srr.WithContinueOnError(config.ContinueOnError),
		srr.WithSinks(sinks...))

	if config.Watch {
		smileService, err := srr.NewSmileService(config.MomUrl, config.MomCert, config.MomKey, config.MomCons, config.MomPw, auditor, logger)
		if err != nil {
			return fmt.Errorf("SMILE Service cannot be created: %w", err)
		}
		return smileService.Run(ctx, os.Stdout, config.MomCons, config.MomSub, config.MomNrf, tracer)
	}

	awsS3Service, err := newAWSS3Service(config)
	if err != nil {
		return err
	}

	publishing := config.AWSDestBucket != "" || config.DBFSPath != ""
	var report bytes.Buffer
	var out io.Writer = os.Stdout
	if publishing {
		out = io.MultiWriter(os.Stdout, &report)
	}

	stats, err := auditor.RunLog(ctx, config.LogFile, awsS3Service, out)
	if err != nil {
		return err
	}

	if publishing {
		if err := publishReport(ctx, config, awsS3Service, runID, report.Bytes(), logger); err != nil {
			return err
		}
	}

	if config.SlackURL != "" {
		text := srr.RunNotification(config.LogFile, runID, stats)
		if err := srr.NotifyViaSlack(ctx, text, config.SlackURL); err != nil {
			logger.Warn("Failed to notify via slack", zap.Error(err))
		}
	}
	return nil
}

func newAWSS3Service(config srr.Config) (*srr.AWSS3Service, error) {
	session, err := strconv.ParseFloat(config.AWSSession, 64)
	if err != nil {
		return nil, fmt.Errorf("Invalid aws session duration %q: %w", config.AWSSession, err)
	}
	return srr.NewAWSS3Service(config.SAML2AWSBin, config.SAMLProfile, config.SAMLRegion, session), nil
}

func publishReport(ctx context.Context, config srr.Config, awsS3Service *srr.AWSS3Service, runID string, report []byte, logger *zap.Logger) error {
	name := fmt.Sprintf("request_summary_%s.tsv", runID)

	if config.AWSDestBucket != "" {
		if err := awsS3Service.PutReport(ctx, name, config.AWSDestBucket, report); err != nil {
			return err
		}
		logger.Info("Uploaded report to S3", zap.String("bucket", config.AWSDestBucket), zap.String("key", name))
	}

	if config.DBFSPath != "" {
		restService, err := srr.NewDatabricksRestService(config.DBHostname, config.DBToken, config.DBFSPath)
		if err != nil {
			return err
		}
		if err := restService.PutReport(ctx, name, report); err != nil {
			return err
		}
		logger.Info("Uploaded report to Databricks", zap.String("path", restService.ReportPath(name)))

		if config.DLTPipeline != "" {
			databricksService, err := srr.NewDatabricksService(config.DBHostname, config.DBToken, config.DLTPipeline)
			if err != nil {
				return err
			}
			if err := databricksService.ExecutePipeline(ctx); err != nil {
				return err
			}
			logger.Info("Started report DLT pipeline", zap.String("pipeline", config.DLTPipeline))
		}
	}
	return nil
}
