package smile_request_report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/databricks/databricks-sdk-go"
	"github.com/databricks/databricks-sdk-go/config"
	"github.com/databricks/databricks-sdk-go/service/files"
)

// DatabricksRestService publishes finished reports to a Databricks volume.
type DatabricksRestService struct {
	wClient  *databricks.WorkspaceClient
	dbfsPath string
}

func NewDatabricksRestService(dbInstance, token, dbfsPath string) (*DatabricksRestService, error) {
	w, err := newWorkspaceClient(dbInstance, token)
	if err != nil {
		return nil, err
	}
	return &DatabricksRestService{wClient: w, dbfsPath: dbfsPath}, nil
}

func newWorkspaceClient(dbInstance, token string) (*databricks.WorkspaceClient, error) {
	w, err := databricks.NewWorkspaceClient(&databricks.Config{
		Host:        fmt.Sprintf("https://%s", dbInstance),
		Token:       token,
		Credentials: config.PatCredentials{},
	})
	if err != nil {
		return nil, fmt.Errorf("Cannot create a databricks workspace client: %v", err)
	}
	return w, nil
}

// ReportPath is where a report named name is written.
func (d *DatabricksRestService) ReportPath(name string) string {
	return path.Join(d.dbfsPath, name)
}

func (d *DatabricksRestService) PutReport(ctx context.Context, name string, report []byte) error {
	uploadReq := files.UploadRequest{
		FilePath:  d.ReportPath(name),
		Contents:  io.NopCloser(bytes.NewReader(report)),
		Overwrite: true,
	}
	if err := d.wClient.Files.Upload(ctx, uploadReq); err != nil {
		return fmt.Errorf("Failed to upload report: '%s': %q", name, err)
	}
	return nil
}
