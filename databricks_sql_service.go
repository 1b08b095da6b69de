package smile_request_report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbsql "github.com/databricks/databricks-sql-go"
)

// SummaryTableService stores each request summary of a run as a row of a
// Databricks SQL table.
type SummaryTableService struct {
	db    *sql.DB
	table string
	runID string
	now   func() time.Time
}

func NewSummaryTableService(hostname, httpPath, token string, port int, schema, table, runID string) (*SummaryTableService, func(), error) {
	connector, err := dbsql.NewConnector(
		dbsql.WithServerHostname(hostname),
		dbsql.WithPort(port),
		dbsql.WithHTTPPath(httpPath),
		dbsql.WithAccessToken(token),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("Failed to create databricks connector: %q", err)
	}
	db := sql.OpenDB(connector)
	closeDB := func() { db.Close() }
	return &SummaryTableService{
		db:    db,
		table: fmt.Sprintf("`%s`.`%s`", schema, table),
		runID: runID,
		now:   time.Now,
	}, closeDB, nil
}

func (s *SummaryTableService) insertStatement() string {
	return fmt.Sprintf("INSERT INTO %s (run_id, request_id, logged_request_status, project_id, is_cmo_request, "+
		"total_num_samples, failed_num_samples, detailed_sample_errors, audited_at) "+
		"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table)
}

// Record implements SummarySink.
func (s *SummaryTableService) Record(ctx context.Context, rs RequestSummary) error {
	_, err := s.db.ExecContext(ctx, s.insertStatement(),
		s.runID,
		rs.RequestID,
		rs.LoggedStatus,
		rs.ProjectID,
		rs.IsCmoRequest,
		rs.TotalSamples,
		rs.FailedSamples,
		FormatSampleErrors(rs.SampleErrors),
		s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("Failed to insert summary for request '%s': %q", rs.RequestID, err)
	}
	return nil
}

// RemoveRun deletes the rows written by this run.
func (s *SummaryTableService) RemoveRun(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE run_id = ?", s.table), s.runID)
	if err != nil {
		return fmt.Errorf("Failed to remove run '%s': %q", s.runID, err)
	}
	return nil
}

// CountRun returns how many rows this run has written.
func (s *SummaryTableService) CountRun(ctx context.Context) (int, error) {
	var n int
	row := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE run_id = ?", s.table), s.runID)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("Failed to count rows of run '%s': %q", s.runID, err)
	}
	return n, nil
}
