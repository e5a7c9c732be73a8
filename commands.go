package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/alexbotov/gpay/internal/config"
	"github.com/alexbotov/gpay/internal/database"
	"github.com/alexbotov/gpay/internal/journal"
	"github.com/alexbotov/gpay/pkg/gpay"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// runClientCommand runs one API call with the configured credentials and
// prints the verified result as JSON.
func runClientCommand(ctx context.Context, cfg *config.Config, logger *zap.Logger, command string, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	baseURL, err := cfg.GPay.BaseURL()
	if err != nil {
		return err
	}

	opts := []gpay.Option{
		gpay.WithLanguage(cfg.GPay.Language),
		gpay.WithTimeout(cfg.GPay.Timeout),
		gpay.WithLogger(logger),
	}

	var journalSvc *journal.Service
	if cfg.Journal.Enabled {
		db, err := database.New(ctx, cfg.Journal.Driver, cfg.Journal.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		journalSvc = journal.New(db.DB, journal.WithEnvironment(baseURL))
		opts = append(opts, gpay.WithRecorder(journalSvc))
	}

	client, err := gpay.NewClient(cfg.GPay.Credentials(), baseURL, opts...)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	amount := fs.String("amount", "", "amount as a decimal string")
	reference := fs.String("reference", "", "merchant reference number")
	description := fs.String("description", "", "free text description")
	id := fs.String("id", "", "payment request or wallet gateway id")
	to := fs.String("to", "", "destination wallet gateway id")
	date := fs.String("date", "", "statement date (YYYY-MM-DD), default today")
	operation := fs.String("operation", "", "journal: filter by operation")
	outcome := fs.String("outcome", "", "journal: filter by outcome")
	limit := fs.Int("limit", 20, "journal: maximum entries")
	summary := fs.Bool("summary", false, "journal: count calls per outcome instead of listing them")
	since := fs.Duration("since", 24*time.Hour, "journal -summary: look back this far")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var result interface{}
	switch command {
	case "balance":
		result, err = client.GetBalance(ctx)
	case "create-payment-request":
		if *amount == "" {
			return errors.New("-amount is required")
		}
		result, err = client.CreatePaymentRequest(ctx, *amount, *reference, *description)
	case "payment-status":
		if *id == "" {
			return errors.New("-id is required")
		}
		result, err = client.CheckPaymentStatus(ctx, *id)
	case "send-money":
		if *amount == "" || *to == "" {
			return errors.New("-amount and -to are required")
		}
		result, err = client.SendMoney(ctx, *amount, *to, *description, *reference)
	case "statement":
		day := time.Now()
		if *date != "" {
			day, err = time.Parse(gpay.StatementDateLayout, *date)
			if err != nil {
				return errors.Wrap(err, "-date")
			}
		}
		result, err = client.GetDayStatement(ctx, day)
	case "check-wallet":
		if *id == "" {
			return errors.New("-id is required")
		}
		result, err = client.CheckWallet(ctx, *id)
	case "outstanding":
		result, err = client.GetOutstandingTransactions(ctx)
	case "journal":
		if journalSvc == nil {
			return errors.New("journal is disabled; set JOURNAL_ENABLED=true")
		}
		if *summary {
			result, err = journalSvc.Summary(ctx, time.Now().Add(-*since))
			break
		}
		result, err = journalSvc.Entries(ctx, &journal.Filter{
			Operation: *operation,
			Outcome:   gpay.Outcome(*outcome),
			Limit:     *limit,
		})
	default:
		return errors.Errorf("unknown command %q\n\n%s", command, usage)
	}
	if err != nil {
		if gpay.IsIntegrityError(err) {
			return errors.Wrap(err, "response rejected, do not trust its contents")
		}
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
