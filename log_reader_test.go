package smile_request_report

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func readAll(t testing.TB, log string) ([]LogEntry, error) {
	t.Helper()
	lr := NewLogReader(strings.NewReader(log))
	var entries []LogEntry
	for {
		entry, err := lr.Next()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, entry)
	}
}

func TestLogReader(t *testing.T) {

	t.Run("header is skipped", func(t *testing.T) {
		entries, err := readAll(t, "a\tb\tc\n2024-01-01\tCOMPLETED\t{}\textra\n")
		require.NoError(t, err)
		require.Equal(t, []LogEntry{{Line: 2, LoggedStatus: "COMPLETED", RequestJSON: "{}"}}, entries)
	})

	t.Run("header only", func(t *testing.T) {
		entries, err := readAll(t, LogHeader+"\n")
		require.NoError(t, err)
		require.Empty(t, entries)
	})

	t.Run("empty log", func(t *testing.T) {
		entries, err := readAll(t, "")
		require.NoError(t, err)
		require.Empty(t, entries)
	})

	t.Run("crlf line endings and missing final newline", func(t *testing.T) {
		entries, err := readAll(t, "h\r\nd1\tNEW\t{\"a\":1}\r\nd2\tFAILED\t{\"a\":2}")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.Equal(t, `{"a":1}`, entries[0].RequestJSON)
		require.Equal(t, "FAILED", entries[1].LoggedStatus)
		require.Equal(t, 3, entries[1].Line)
	})

	t.Run("blank lines are skipped", func(t *testing.T) {
		entries, err := readAll(t, "h\n\nd1\tNEW\t{}\n \n")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, 3, entries[0].Line)
	})

	t.Run("exactly three columns", func(t *testing.T) {
		entries, err := readAll(t, "h\nd1\tNEW\t{}\n")
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})

	t.Run("short line", func(t *testing.T) {
		_, err := readAll(t, "h\nd1\tNEW\n")
		var lineErr *MalformedLineError
		require.ErrorAs(t, err, &lineErr)
		require.Equal(t, 2, lineErr.Line)
		require.Equal(t, 2, lineErr.Columns)
	})

	t.Run("long lines", func(t *testing.T) {
		big := `{"pad":"` + strings.Repeat("x", 1<<20) + `"}`
		entries, err := readAll(t, RequestLog(LogLine("d1", "NEW", big)))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, big, entries[0].RequestJSON)
	})
}
