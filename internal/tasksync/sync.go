package tasksync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/ledger-reconciler/internal/logger"
	"github.com/dvloznov/ledger-reconciler/internal/task"
)

// SyncTasks creates one Notion page per task that does not already exist in
// the database. Idempotency is by task ID: re-running the sync with the same
// task list creates nothing new. With dryRun set, changes are logged but not
// written.
func SyncTasks(ctx context.Context, client NotionService, databaseID string, tasks []task.Task, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Int("task_count", len(tasks)).
		Bool("dry_run", dryRun).
		Msg("Starting task sync to Notion")

	existing, err := queryExistingTaskIDs(ctx, client, databaseID)
	if err != nil {
		return fmt.Errorf("SyncTasks: %w", err)
	}
	log.Info().Int("existing_pages", len(existing)).Msg("Queried existing task pages")

	var created, skipped int
	for _, t := range tasks {
		props := TaskToNotionProperties(t)
		if props == nil {
			continue
		}
		id := titleOf(props)
		if existing[id] {
			skipped++
			continue
		}
		if dryRun {
			log.Info().Str("task_id", id).Str("description", t.Describe()).Msg("[DRY RUN] Would create task page")
			created++
			continue
		}
		if _, err := client.CreatePage(ctx, databaseID, props); err != nil {
			return fmt.Errorf("SyncTasks: create page for task %s: %w", id, err)
		}
		created++
	}

	log.Info().Int("created", created).Int("skipped", skipped).Msg("Task sync complete")
	return nil
}

func titleOf(props notionapi.Properties) string {
	title, ok := props["Task ID"].(notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 || title.Title[0].Text == nil {
		return ""
	}
	return title.Title[0].Text.Content
}

// queryExistingTaskIDs pages through the database collecting the task IDs
// already present.
func queryExistingTaskIDs(ctx context.Context, client NotionService, databaseID string) (map[string]bool, error) {
	ids := make(map[string]bool)
	var cursor notionapi.Cursor
	for {
		req := &notionapi.DatabaseQueryRequest{
			StartCursor: cursor,
			PageSize:    100,
		}
		resp, err := client.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, err
		}
		for _, page := range resp.Results {
			if id := extractTaskID(page); id != "" {
				ids[id] = true
			}
		}
		if !resp.HasMore {
			return ids, nil
		}
		cursor = resp.NextCursor
	}
}
