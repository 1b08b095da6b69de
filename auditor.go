package smile_request_report

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// SummarySink receives every summary after its line is written.
type SummarySink interface {
	Record(ctx context.Context, rs RequestSummary) error
}

// AuditStats counts what a run reported.
type AuditStats struct {
	Requests      int
	Skipped       int
	TotalSamples  int
	FailedSamples int
}

func (s AuditStats) String() string {
	return fmt.Sprintf("%d requests audited (%d skipped), %d of %d samples missing fields",
		s.Requests, s.Skipped, s.FailedSamples, s.TotalSamples)
}

// Auditor drives a log through the summarizer and writes the report.
type Auditor struct {
	summarizer      *RequestSummarizer
	logger          *zap.Logger
	tracer          trace.Tracer
	sinks           []SummarySink
	continueOnError bool
}

type AuditorOption func(*Auditor)

// WithContinueOnError makes the auditor skip lines that fail to parse or miss
// mandatory fields instead of stopping.
func WithContinueOnError(continueOnError bool) AuditorOption {
	return func(a *Auditor) { a.continueOnError = continueOnError }
}

func WithSinks(sinks ...SummarySink) AuditorOption {
	return func(a *Auditor) { a.sinks = append(a.sinks, sinks...) }
}

func NewAuditor(summarizer *RequestSummarizer, logger *zap.Logger, tracer trace.Tracer, opts ...AuditorOption) *Auditor {
	a := &Auditor{summarizer: summarizer, logger: logger, tracer: tracer}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

const (
	auditRunMsg       = "Auditing request log"
	auditRequestMsg   = "Auditing request"
	RequestIdKey      = "Request ID"
	LoggedStatusKey   = "Logged Status"
	TotalSamplesKey   = "Total Samples"
	FailedSamplesKey  = "Failed Samples"
	auditReqErrMsg    = "Error auditing request"
	auditSinkErrMsg   = "Error recording request summary"
	auditReqSucMsg    = "Successfully audited request"
	skippingLineMsg   = "Skipping log line"
	writeReportErrMsg = "Failed to write report line"
)

// Run writes the header and then one line per log entry to out. It stops at
// the first error unless the auditor continues on error, in which case only
// errors confined to a single line are skipped.
func (a *Auditor) Run(ctx context.Context, in io.Reader, out io.Writer) (AuditStats, error) {
	var stats AuditStats
	runCtx, runSpan := a.tracer.Start(ctx, auditRunMsg)
	defer runSpan.End()

	if _, err := fmt.Fprintln(out, FormatHeader()); err != nil {
		return stats, fmt.Errorf("%s: %w", writeReportErrMsg, err)
	}

	lr := NewLogReader(in)
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		entry, err := lr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err == nil {
			var rs RequestSummary
			rs, err = a.AuditEntry(runCtx, entry)
			if err == nil {
				if werr := a.Emit(runCtx, out, rs); werr != nil {
					return stats, werr
				}
				stats.Requests++
				stats.TotalSamples += rs.TotalSamples
				stats.FailedSamples += rs.FailedSamples
				continue
			}
		}
		if a.continueOnError && IsRecoverable(err) {
			a.logger.Warn(skippingLineMsg, zap.Error(err))
			stats.Skipped++
			continue
		}
		runSpan.SetStatus(codes.Error, err.Error())
		return stats, err
	}
	a.logger.Info("Finished auditing request log",
		zap.Int("requests", stats.Requests),
		zap.Int("skipped", stats.Skipped),
		zap.Int("samples", stats.TotalSamples),
		zap.Int("failedSamples", stats.FailedSamples))
	return stats, nil
}

// AuditEntry parses and summarizes one log entry.
func (a *Auditor) AuditEntry(ctx context.Context, entry LogEntry) (RequestSummary, error) {
	rr, err := ParseRequest([]byte(entry.RequestJSON))
	if err != nil {
		return RequestSummary{}, &MalformedJSONError{Line: entry.Line, Err: err}
	}
	return a.Audit(ctx, rr, entry.LoggedStatus)
}

// Audit summarizes a decoded request inside its own span.
func (a *Auditor) Audit(ctx context.Context, rr RequestRecord, loggedStatus string) (RequestSummary, error) {
	_, span := a.tracer.Start(ctx, auditRequestMsg)
	defer span.End()
	span.SetAttributes(attribute.String(LoggedStatusKey, loggedStatus))
	if rr.RequestID != nil {
		span.SetAttributes(attribute.String(RequestIdKey, *rr.RequestID))
	}

	rs, err := a.summarizer.Summarize(rr, loggedStatus)
	if err != nil {
		msg := fmt.Sprintf("%s: %v", auditReqErrMsg, err)
		span.AddEvent(msg)
		span.SetStatus(codes.Error, msg)
		return RequestSummary{}, err
	}
	span.SetAttributes(
		attribute.Int(TotalSamplesKey, rs.TotalSamples),
		attribute.Int(FailedSamplesKey, rs.FailedSamples),
	)
	span.AddEvent(auditReqSucMsg)
	a.logger.Debug(auditReqSucMsg,
		zap.String("requestId", rs.RequestID),
		zap.Int("samples", rs.TotalSamples),
		zap.Int("failedSamples", rs.FailedSamples))
	return rs, nil
}

// RunLog opens the log at path, local or s3://, and runs it. Nothing is
// written to out when the log cannot be opened.
func (a *Auditor) RunLog(ctx context.Context, path string, awsS3Service *AWSS3Service, out io.Writer) (AuditStats, error) {
	in, err := OpenLog(ctx, path, awsS3Service)
	if err != nil {
		return AuditStats{}, err
	}
	defer in.Close()
	return a.Run(ctx, in, out)
}

// Emit writes the report line of rs, then hands rs to the sinks. Sinks only
// see summaries whose line was written.
func (a *Auditor) Emit(ctx context.Context, out io.Writer, rs RequestSummary) error {
	if _, err := fmt.Fprintln(out, FormatSummary(rs)); err != nil {
		return fmt.Errorf("%s: %w", writeReportErrMsg, err)
	}
	return a.record(ctx, rs)
}

func (a *Auditor) record(ctx context.Context, rs RequestSummary) error {
	for _, sink := range a.sinks {
		if err := sink.Record(ctx, rs); err != nil {
			return fmt.Errorf("%s '%s': %w", auditSinkErrMsg, rs.RequestID, err)
		}
	}
	return nil
}
