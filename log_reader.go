package smile_request_report

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"
)

var errNoS3Service = errors.New("no S3 service configured")

const (
	minLogColumns      = 3
	loggedStatusColumn = 1
	requestJSONColumn  = 2
)

// LogEntry is one data line of a request log.
type LogEntry struct {
	Line         int
	LoggedStatus string
	RequestJSON  string
}

// LogReader yields the data lines of a tab-separated request log. The first
// line is a header and is skipped.
type LogReader struct {
	r    *bufio.Reader
	line int
}

func NewLogReader(r io.Reader) *LogReader {
	return &LogReader{r: bufio.NewReader(r)}
}

// Next returns the next data line, or io.EOF when the log is exhausted.
func (lr *LogReader) Next() (LogEntry, error) {
	for {
		text, err := lr.r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return LogEntry{}, err
		}
		if text == "" && errors.Is(err, io.EOF) {
			return LogEntry{}, io.EOF
		}
		lr.line++
		text = strings.TrimRight(text, "\r\n")
		if lr.line == 1 || strings.TrimSpace(text) == "" {
			if errors.Is(err, io.EOF) {
				return LogEntry{}, io.EOF
			}
			continue
		}

		columns := strings.Split(text, "\t")
		if len(columns) < minLogColumns {
			return LogEntry{}, &MalformedLineError{Line: lr.line, Columns: len(columns)}
		}
		return LogEntry{
			Line:         lr.line,
			LoggedStatus: columns[loggedStatusColumn],
			RequestJSON:  columns[requestJSONColumn],
		}, nil
	}
}

// OpenLog opens a local log file, or fetches it from S3 when path is an
// s3://bucket/key URL. Failures are returned as *FileAccessError.
func OpenLog(ctx context.Context, path string, awsS3Service *AWSS3Service) (io.ReadCloser, error) {
	if bucket, key, ok := ParseS3URL(path); ok {
		if awsS3Service == nil {
			return nil, &FileAccessError{Path: path, Err: errNoS3Service}
		}
		body, err := awsS3Service.GetLogObject(ctx, key, bucket)
		if err != nil {
			return nil, &FileAccessError{Path: path, Err: err}
		}
		return body, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	return f, nil
}
