package smile_request_report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type slackMessage struct {
	Text string `json:"text"`
}

// RunNotification is the Slack text posted after a run.
func RunNotification(source, runID string, stats AuditStats) string {
	return fmt.Sprintf("SMILE request summary report %s for %s: %s", runID, source, stats)
}

func NotifyViaSlack(ctx context.Context, text, slackURL string) error {

	slackCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	body, err := json.Marshal(slackMessage{Text: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(slackCtx, http.MethodPost, slackURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Slack notification failed with status %d", resp.StatusCode)
	}
	return nil
}
