package smile_request_report

import (
	"context"
	"fmt"
	"io"
	"strconv"

	nm "github.com/mskcc/nats-messaging-go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// SmileService audits new requests as they are published on the SMILE
// message stream.
type SmileService struct {
	auditor       *Auditor
	natsMessaging *nm.Messaging
	logger        *zap.Logger
}

// AuditedMsg is a summary waiting to be written, with the message to ack once
// it is.
type AuditedMsg struct {
	Summary RequestSummary
	Msg     *nm.Msg
}

const auditedBufSize = 1

func NewSmileService(url, certPath, keyPath, consumer, password string, auditor *Auditor, logger *zap.Logger) (*SmileService, error) {
	natsMessaging, err := nm.NewSecureMessaging(url, certPath, keyPath, consumer, password)
	if err != nil {
		return nil, fmt.Errorf("Failed to create a nats messaging client: %q", err)
	}
	return &SmileService{auditor: auditor, natsMessaging: natsMessaging, logger: logger}, nil
}

const (
	runMsg             = "Watching SMILE new request stream"
	runSubscribeMsg    = "Subscribing to SMILE message topics"
	incomingNewReqMsg  = "New incoming request"
	auditNewReqErrMsg  = "Error auditing new incoming request"
	auditNewReqSucMsg  = "Successfully audited new incoming request"
	writeNewReqErrMsg  = "Error emitting summary of new incoming request"
	contextCanceledMsg = "Context canceled, returning..."
)

// Run writes the report header, then one line per new request until ctx is
// canceled. Lines are written by this goroutine only.
func (ss *SmileService) Run(ctx context.Context, out io.Writer, consumer, subject, newRequestFilter string, tracer trace.Tracer) error {
	runCtx, runSpan := tracer.Start(ctx, runMsg)
	defer runSpan.End()

	if _, err := fmt.Fprintln(out, FormatHeader()); err != nil {
		return fmt.Errorf("%s: %w", writeReportErrMsg, err)
	}

	auditedChan := make(chan AuditedMsg, auditedBufSize)
	runSpan.AddEvent(runSubscribeMsg)
	err := ss.subscribeToService(runCtx, auditedChan, consumer, subject, newRequestFilter)
	if err != nil {
		return err
	}

	for {
		select {
		case am := <-auditedChan:
			if err := ss.auditor.Emit(runCtx, out, am.Summary); err != nil {
				// left un-acked so the request is audited again on restart
				ss.logger.Error(writeNewReqErrMsg, zap.String("requestId", am.Summary.RequestID), zap.Error(err))
				ss.natsMessaging.Shutdown()
				return err
			}
			am.Msg.ProviderMsg.Ack()
		case <-ctx.Done():
			ss.logger.Info(contextCanceledMsg)
			ss.natsMessaging.Shutdown()
			return nil
		}
	}
}

func (ss *SmileService) subscribeToService(ctx context.Context, auditedCh chan AuditedMsg, consumer, subject, newRequestFilter string) error {
	err := ss.natsMessaging.Subscribe(consumer, subject, func(m *nm.Msg) {
		if m.Subject != newRequestFilter {
			// not interested in message, Ack it so we don't get it again
			m.ProviderMsg.Ack()
			return
		}
		ss.logger.Debug(incomingNewReqMsg, zap.String("subject", m.Subject))
		rs, err := ss.AuditMessage(ctx, m.Subject, string(m.Data))
		if err != nil {
			// left un-acked so the message is redelivered
			ss.logger.Error(auditNewReqErrMsg, zap.String("subject", m.Subject), zap.Error(err))
			return
		}
		select {
		case auditedCh <- AuditedMsg{Summary: rs, Msg: m}:
		case <-ctx.Done():
		}
	})
	return err
}

// AuditMessage summarizes one new request message. The subject stands in for
// the logged status. Sinks are not called until the summary is emitted.
func (ss *SmileService) AuditMessage(ctx context.Context, subject, data string) (RequestSummary, error) {
	rr, err := unMarshal[RequestRecord](data)
	if err != nil {
		return RequestSummary{}, &MalformedJSONError{Err: err}
	}
	rs, err := ss.auditor.Audit(ctx, rr, subject)
	if err != nil {
		return RequestSummary{}, err
	}
	ss.logger.Info(auditNewReqSucMsg, zap.String("requestId", rs.RequestID), zap.Int("failedSamples", rs.FailedSamples))
	return rs, nil
}

// unMarshal decodes a message payload. SMILE publishes the JSON document as a
// quoted string; unquoted payloads are decoded as is.
func unMarshal[T any](msgData string) (T, error) {
	if unquoted, err := strconv.Unquote(msgData); err == nil {
		msgData = unquoted
	}
	return UnmarshalT[T]([]byte(msgData))
}
