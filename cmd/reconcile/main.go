package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/joho/godotenv"

	"github.com/dvloznov/ledger-reconciler/internal/domain"
	infra "github.com/dvloznov/ledger-reconciler/internal/infra/bigquery"
	"github.com/dvloznov/ledger-reconciler/internal/ledger"
	"github.com/dvloznov/ledger-reconciler/internal/logger"
	"github.com/dvloznov/ledger-reconciler/internal/reconcile"
	"github.com/dvloznov/ledger-reconciler/internal/statement"
	"github.com/dvloznov/ledger-reconciler/internal/task"
)

func main() {
	// .env carries GOOGLE_APPLICATION_CREDENTIALS and friends; absence is
	// fine when the environment is already configured.
	godotenv.Load()

	log := logger.New()

	projectID := flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project for the ledger dataset")
	dataset := flag.String("dataset", "ledger", "BigQuery dataset holding the ledger tables")
	bookName := flag.String("book", "", "Ledger book name (required)")
	dateStr := flag.String("date", "", "Reconciliation date in YYYY-MM-DD format (required)")
	statementPath := flag.String("statement", "", "Statement CSV: local path or gs:// URI (optional)")
	budgetPath := flag.String("budget", "budget.json", "Budget definition JSON")
	accountsPath := flag.String("accounts", "accounts.json", "Tracked-account registry JSON")
	balancesStr := flag.String("balances", "", "Current balances, e.g. \"Cheque=4500.00,Savings=1200.00\" (required)")
	assignStr := flag.String("assign", "", "New bucket assignments effective this date, e.g. \"POWER=Savings,FOOD=Cheque\"")
	remarks := flag.String("remarks", "", "Remarks to record on the new line")
	tasksOut := flag.String("tasks-out", "tasks.json", "Where to write the generated task list")
	dryRun := flag.Bool("dry-run", false, "Compute and report without persisting the new line")
	flag.Parse()

	if *bookName == "" {
		log.Fatal().Msg("Error: --book is required")
	}
	if *dateStr == "" {
		log.Fatal().Msg("Error: --date is required")
	}
	if *balancesStr == "" {
		log.Fatal().Msg("Error: --balances is required")
	}
	date, err := civil.ParseDate(*dateStr)
	if err != nil {
		log.Fatal().Err(err).Str("date", *dateStr).Msg("Error: invalid date format, expected YYYY-MM-DD")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	accounts, err := domain.LoadAccounts(*accountsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load accounts")
	}
	budget, err := domain.LoadBudget(*budgetPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load budget")
	}
	balances, err := parseBalances(*balancesStr, accounts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse balances")
	}

	var stmt *domain.StatementModel
	if *statementPath != "" {
		stmt, err = loadStatement(ctx, *statementPath, accounts)
		if err != nil {
			log.Fatal().Err(err).Str("statement", *statementPath).Msg("Failed to load statement")
		}
	}

	repo, err := infra.NewRepository(ctx, *projectID, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
	}
	defer repo.Close()

	book, err := repo.LoadBook(ctx, *bookName)
	if err != nil {
		log.Fatal().Err(err).Str("book", *bookName).Msg("Failed to load ledger book")
	}

	assignments, err := parseAssignments(*assignStr, accounts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse bucket assignments")
	}
	for code, account := range assignments {
		if err := book.AssignBucket(code, account, date); err != nil {
			log.Fatal().Err(err).Str("bucket", code).Msg("Failed to assign bucket")
		}
	}

	tasks := task.NewList()
	builder := reconcile.NewBuilder(book)
	draft, err := builder.CreateReconciliation(ctx, date, balances, budget, stmt, tasks)
	if err != nil {
		log.Fatal().Err(err).Msg("Reconciliation failed")
	}
	if *remarks != "" {
		draft.UpdateRemarks(*remarks)
	}

	line := draft.Commit()
	if msgs := line.Validate(); len(msgs) > 0 {
		for _, m := range msgs {
			log.Error().Msg(m)
		}
		log.Fatal().Int("problems", len(msgs)).Msg("New reconciliation line failed validation")
	}

	printSummary(line, tasks)

	if err := task.WriteFile(*tasksOut, tasks.All()); err != nil {
		log.Fatal().Err(err).Msg("Failed to write task list")
	}

	if *dryRun {
		fmt.Println("Dry run: line not persisted.")
		return
	}
	for code, account := range assignments {
		if err := repo.InsertAssignment(ctx, *bookName, code, account, date, false); err != nil {
			log.Fatal().Err(err).Str("bucket", code).Msg("Failed to persist bucket assignment")
		}
	}
	if err := book.Append(line); err != nil {
		log.Fatal().Err(err).Msg("Failed to append line to the book")
	}
	if err := repo.InsertLine(ctx, *bookName, line); err != nil {
		log.Fatal().Err(err).Msg("Failed to persist the new line")
	}
	if err := repo.InsertTasks(ctx, *bookName, date, tasks.All()); err != nil {
		log.Fatal().Err(err).Msg("Failed to persist the task list")
	}
	fmt.Printf("Reconciliation for %s persisted. %d tasks written to %s.\n", date, tasks.Len(), *tasksOut)
}

// parseBalances decodes "Account=123.45,Other=67.89" against the registry.
func parseBalances(s string, accounts map[string]domain.Account) ([]domain.BankBalance, error) {
	var out []domain.BankBalance
	for _, part := range strings.Split(s, ",") {
		name, amountStr, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, fmt.Errorf("parse balances: %q is not name=amount", part)
		}
		account, found := accounts[name]
		if !found {
			return nil, fmt.Errorf("parse balances: unknown account %q", name)
		}
		amount, err := domain.ParseMoney(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse balances: %s: %w", name, err)
		}
		out = append(out, domain.BankBalance{Account: account, Balance: amount})
	}
	return out, nil
}

// parseAssignments decodes "POWER=Savings,FOOD=Cheque" against the registry.
func parseAssignments(s string, accounts map[string]domain.Account) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account)
	if s == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		code, accountName, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || code == "" {
			return nil, fmt.Errorf("parse assignments: %q is not bucket=account", part)
		}
		account, found := accounts[accountName]
		if !found {
			return nil, fmt.Errorf("parse assignments: unknown account %q", accountName)
		}
		out[code] = account
	}
	return out, nil
}

func loadStatement(ctx context.Context, path string, accounts map[string]domain.Account) (*domain.StatementModel, error) {
	var data []byte
	var err error
	if strings.HasPrefix(path, "gs://") {
		data, err = statement.FetchGCS(ctx, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return statement.Read(bytes.NewReader(data), accounts)
}

func printSummary(line *ledger.Line, tasks *task.List) {
	fmt.Printf("Ledger balance: %s\n", line.LedgerBalance())
	fmt.Printf("Calculated surplus: %s\n", line.CalculatedSurplus())
	if tasks.Len() == 0 {
		fmt.Println("No follow-up tasks.")
		return
	}
	fmt.Printf("Follow-up tasks (%d):\n", tasks.Len())
	for _, t := range tasks.All() {
		fmt.Printf("  - %s\n", t.Describe())
	}
}
