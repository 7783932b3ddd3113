// Package tasksync exports reconciliation follow-up tasks to a Notion
// database so the user can tick them off outside this tool.
package tasksync

import (
	"context"

	"github.com/jomei/notionapi"
)

// NotionService is the slice of the Notion API the sync needs. The
// interface exists so tests can run against a fake.
type NotionService interface {
	// CreatePage creates a new page in a Notion database.
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)

	// QueryDatabase queries a Notion database with the given filter.
	QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}
