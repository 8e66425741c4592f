package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"layledger/api"
	"layledger/cmd"
	"layledger/config"
	"layledger/database"
	"layledger/events"
	"layledger/models"
	"layledger/service"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const usage = `usage:
  layledger                               serve the API, metrics and rollover worker
  layledger migrate up|down [n]|status    manage the schema
  layledger seed-deposits [count]         replace the deposit address pool
  layledger rollover [YYYY-MM-DD]         pay out a week's bonuses (default: previous week)
  layledger create-account EMAIL [BALANCE]`

func main() {
	// A missing .env is fine, the environment may already be set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to read .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if len(os.Args) < 2 {
		err = cmd.Run(ctx)
	} else {
		err = runCommand(ctx, os.Args[1], os.Args[2:])
	}
	if err != nil {
		log.WithError(err).Fatal("layledger failed")
	}
}

func runCommand(ctx context.Context, name string, args []string) error {
	cfg := config.Get()
	cmd.SetupLogging(cfg)

	switch name {
	case "migrate":
		return handleMigrationCommand(cfg, args)
	case "seed-deposits":
		return handleSeedDeposits(ctx, cfg, args)
	case "rollover":
		return handleRollover(ctx, cfg, args)
	case "create-account":
		return handleCreateAccount(ctx, cfg, args)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", name, usage)
	}
}

func handleMigrationCommand(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: layledger migrate [up|down|status] [args...]")
	}

	databaseURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return err
	}

	switch args[0] {
	case "up":
		return database.MigrateUp(databaseURL)
	case "down":
		steps := 1
		if len(args) > 1 {
			steps, err = strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid step count %q: %w", args[1], err)
			}
		}
		return database.MigrateDown(databaseURL, steps)
	case "status":
		return database.MigrateStatus(databaseURL)
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}

func handleSeedDeposits(ctx context.Context, cfg *config.Config, args []string) error {
	count := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("count must be a positive integer, got %q", args[0])
		}
		count = n
	}

	services, closeFn, err := openServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := services.Deposits.SeedAddresses(ctx, service.DefaultDepositAddresses(count)); err != nil {
		return err
	}
	log.WithField("count", count).Info("Deposit address pool seeded")
	return nil
}

func handleRollover(ctx context.Context, cfg *config.Config, args []string) error {
	week := service.PreviousWeek(service.SystemClock())
	if len(args) > 0 {
		parsed, err := time.Parse(time.DateOnly, args[0])
		if err != nil {
			return fmt.Errorf("invalid week %q: %w", args[0], err)
		}
		week = parsed
	}

	services, closeFn, err := openServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	paid, err := services.Rollover.RolloverWeek(ctx, week)
	if err != nil {
		return err
	}

	weekStart, _ := models.WeekRange(week)
	log.WithFields(log.Fields{
		"week":       weekStart.Format(time.DateOnly),
		"users_paid": paid,
	}).Info("Rollover completed")
	return nil
}

func handleCreateAccount(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: layledger create-account EMAIL [BALANCE]")
	}

	balance := decimal.Zero
	if len(args) > 1 {
		parsed, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("invalid balance %q: %w", args[1], err)
		}
		balance = parsed
	}

	services, closeFn, err := openServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	user, err := services.Accounts.OpenAccount(ctx, args[0], balance)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"user_id": user.ID,
		"email":   user.Email,
		"balance": user.Balance.String(),
	}).Info("Account created")
	return nil
}

// openServices connects without the HTTP stack; events stay in-process
func openServices(ctx context.Context, cfg *config.Config) (api.Services, func(), error) {
	db, err := cmd.Connect(ctx, cfg)
	if err != nil {
		return api.Services{}, nil, err
	}
	return cmd.NewServices(db, events.NewBus()), db.Close, nil
}
