package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/ledger-reconciler/internal/logger"
	"github.com/dvloznov/ledger-reconciler/internal/task"
	"github.com/dvloznov/ledger-reconciler/internal/tasksync"
)

func main() {
	godotenv.Load()

	log := logger.New()

	tasksPath := flag.String("tasks", "tasks.json", "Task list written by the reconcile command")
	notionToken := flag.String("notion-token", os.Getenv("NOTION_TOKEN"), "Notion API token")
	notionDBID := flag.String("notion-db-id", os.Getenv("NOTION_TASKS_DB"), "Notion database ID for tasks")
	dryRun := flag.Bool("dry-run", false, "Preview changes without syncing")
	flag.Parse()

	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token (or NOTION_TOKEN) is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id (or NOTION_TASKS_DB) is required")
	}

	tasks, err := task.ReadFile(*tasksPath)
	if err != nil {
		log.Fatal().Err(err).Str("tasks", *tasksPath).Msg("Failed to read task list")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	client := tasksync.NewNotionClient(*notionToken)
	if err := tasksync.SyncTasks(ctx, client, *notionDBID, tasks, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Println("Sync completed successfully.")
}
