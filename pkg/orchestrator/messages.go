package orchestrator

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-reportview/pkg/reporterr"
	"github.com/goliatone/go-reportview/pkg/source"
)

// User-facing messages.
const (
	MessageNoData         = "No data available"
	MessageTableFailed    = "Unable to load the selected table"
	MessageSnapshotFailed = "Unable to load the selected snapshot"
	messageGraphNotFound  = "The chart with stat:%s and graph:%s does not exist"
)

// GraphNotFoundMessage is shown when a stat has no graph with the requested
// id, or when the stat/graph flow fails.
func GraphNotFoundMessage(statID, graphID string) string {
	return fmt.Sprintf(messageGraphNotFound, statID, graphID)
}

// errorMessage maps a load failure to the message shown in the Error state.
func errorMessage(flow source.Flow, id source.Identifier, err error) string {
	if errors.Is(err, reporterr.ErrMissingIdentifier) {
		return reporterr.ErrMissingIdentifier.Error()
	}
	switch flow {
	case source.FlowStatGraph:
		return GraphNotFoundMessage(id.StatID, id.GraphID)
	case source.FlowPublicTable:
		return MessageTableFailed
	default:
		return MessageSnapshotFailed
	}
}
