package smile_request_report

import (
	"context"
	"fmt"
	"time"

	"github.com/databricks/databricks-sdk-go"
	"github.com/databricks/databricks-sdk-go/service/pipelines"
)

const pipelineWaitTimeout = 15 * time.Minute

// DatabricksService runs the DLT pipeline that ingests published reports.
type DatabricksService struct {
	wClient           *databricks.WorkspaceClient
	reportDLTPipeName string
}

func NewDatabricksService(dbInstance, token, reportDLTPipeName string) (*DatabricksService, error) {
	w, err := newWorkspaceClient(dbInstance, token)
	if err != nil {
		return nil, err
	}
	return &DatabricksService{wClient: w, reportDLTPipeName: reportDLTPipeName}, nil
}

func (d *DatabricksService) ExecutePipeline(ctx context.Context) error {
	pipelineId, err := d.getPipelineIdByName(ctx)
	if err != nil {
		return fmt.Errorf("Failed to get report DLT Pipeline id: '%s': %q", d.reportDLTPipeName, err)
	}

	if _, err = d.wClient.Pipelines.WaitGetPipelineIdle(ctx, pipelineId, pipelineWaitTimeout, nil); err != nil {
		return fmt.Errorf("Error waiting for pipeline to get in idle state: '%s': %q", d.reportDLTPipeName, err)
	}

	_, err = d.wClient.Pipelines.StartUpdate(ctx, pipelines.StartUpdate{PipelineId: pipelineId})
	if err != nil {
		return fmt.Errorf("Failed to run report DLT Pipeline id: '%s': %q", d.reportDLTPipeName, err)
	}

	if _, err := d.wClient.Pipelines.WaitGetPipelineRunning(ctx, pipelineId, pipelineWaitTimeout, nil); err != nil {
		return fmt.Errorf("Error waiting for pipeline to start running: '%s': %q", d.reportDLTPipeName, err)
	}

	return nil
}

func (d *DatabricksService) getPipelineIdByName(ctx context.Context) (string, error) {
	all, err := d.wClient.Pipelines.ListPipelinesAll(ctx, pipelines.ListPipelinesRequest{})
	if err != nil {
		return "", err
	}
	for _, p := range all {
		if p.Name == d.reportDLTPipeName {
			return p.PipelineId, nil
		}
	}
	return "", fmt.Errorf("pipeline '%s' not found", d.reportDLTPipeName)
}
