// main.go - Admin control tool for PagePulse
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"pagepulse/internal"
	"pagepulse/internal/pages"
	"pagepulse/internal/seeder"
)

const (
	defaultShutdownTimeout = 30 * time.Second
)

// Command defines the interface for all command implementations
type Command interface {
	// Name returns the command name
	Name() string
	// Description returns the command description
	Description() string
	// Execute runs the command with the given app and args
	Execute(ctx context.Context, app *internal.Application, args []string) error
}

// The set of available commands
var commands = []Command{
	&MigrateCommand{},
	&SeedCommand{},
	&ReportCommand{out: os.Stdout},
	&ExportCommand{out: os.Stdout},
	&StatusCommand{},
	&HelpCommand{},
}

func main() {
	flag.Parse()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v, initiating cleanup...", sig)
		cancel()
	}()

	cmdName, args := parseArgs()

	cmd := findCommand(cmdName)
	if cmd == nil {
		showUsageAndExit()
	}

	if _, ok := cmd.(*HelpCommand); ok {
		if err := cmd.Execute(ctx, nil, args); err != nil {
			log.Fatalf("Command failed: %v", err)
		}
		return
	}

	app, err := internal.NewApp()
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	err = cmd.Execute(ctx, app, args)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer shutdownCancel()
	if shutdownErr := app.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Printf("Warning: Cleanup error: %v", shutdownErr)
	}

	if err != nil {
		log.Fatalf("Command failed: %v", err)
	}
	log.Printf("Command %s completed successfully", cmd.Name())
}

// MigrateCommand runs database migrations
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string        { return "migrate" }
func (c *MigrateCommand) Description() string { return "Runs database migrations" }

func (c *MigrateCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	log.Println("Running database migrations...")
	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Println("Migrations completed successfully")
	return nil
}

// SeedCommand loads a YAML fixture or generates demo traffic
type SeedCommand struct{}

func (c *SeedCommand) Name() string { return "seed" }
func (c *SeedCommand) Description() string {
	return "Seeds pages from a YAML fixture, or demo traffic with -demo <slug> [-days N]"
}

func (c *SeedCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	demo := fs.String("demo", "", "slug to generate demo traffic for")
	days := fs.Int("days", 90, "number of days of demo traffic")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	se := seeder.NewSeeder(app.DBManager.GetConnection(), app.Logger)

	if *demo != "" {
		return se.SeedDemo(ctx, *demo, *days, time.Now().In(app.Config.Location()))
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: %s <fixture.yaml> | -demo <slug> [-days N]", c.Name())
	}

	fixture, err := seeder.LoadFixture(fs.Arg(0))
	if err != nil {
		return err
	}
	return se.Apply(ctx, fixture)
}

// ReportCommand prints a page's report as JSON
type ReportCommand struct {
	out io.Writer
}

func (c *ReportCommand) Name() string        { return "report" }
func (c *ReportCommand) Description() string { return "Prints a page's analytics report: report <slug> [days]" }

func (c *ReportCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	page, rawSpan, err := pageArgs(app, c.Name(), args)
	if err != nil {
		return err
	}

	periods, err := app.Reports.Resolve(rawSpan)
	if err != nil {
		return err
	}

	report, err := app.Reports.GetReportForPeriods(ctx, page.Slug, periods)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// ExportCommand prints a page's daily rows as CSV
type ExportCommand struct {
	out io.Writer
}

func (c *ExportCommand) Name() string        { return "export" }
func (c *ExportCommand) Description() string { return "Prints a page's daily rows as CSV: export <slug> [days]" }

func (c *ExportCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	page, rawSpan, err := pageArgs(app, c.Name(), args)
	if err != nil {
		return err
	}

	periods, err := app.Reports.Resolve(rawSpan)
	if err != nil {
		return err
	}

	content, err := app.Reports.ExportCSVForPeriods(ctx, page.Slug, periods)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(c.out, string(content))
	return err
}

// StatusCommand implements a command to check the system status
type StatusCommand struct{}

func (c *StatusCommand) Name() string        { return "status" }
func (c *StatusCommand) Description() string { return "Shows the current system status" }

func (c *StatusCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	db := app.DBManager.GetConnection()

	list, err := pages.ListPages(db)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	log.Println("System Status:")
	log.Println("- Database: Connected")
	log.Printf("- Pages: %d", len(list))
	for _, p := range list {
		log.Printf("  - %s (%s)", p.Slug, p.DisplayTitle())
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB: %w", err)
	}
	log.Printf("- Open Connections: %d", sqlDB.Stats().OpenConnections)

	return nil
}

// HelpCommand implements a command to show usage information
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Shows usage information" }

func (c *HelpCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	printUsage()
	return nil
}

// pageArgs resolves "<slug> [days]" to a stored page and the raw span.
func pageArgs(app *internal.Application, name string, args []string) (*pages.PublishedPage, string, error) {
	if len(args) < 1 {
		return nil, "", fmt.Errorf("usage: %s <slug> [days]", name)
	}

	page, err := pages.GetPageBySlug(app.DBManager.GetConnection(), args[0])
	if err != nil {
		return nil, "", err
	}

	rawSpan := ""
	if len(args) > 1 {
		if _, err := strconv.Atoi(args[1]); err != nil {
			return nil, "", fmt.Errorf("days must be a number, got %q", args[1])
		}
		rawSpan = args[1]
	}
	return page, rawSpan, nil
}

// parseArgs parses the command name and arguments
func parseArgs() (string, []string) {
	args := flag.Args()
	if len(args) == 0 {
		return "help", []string{}
	}
	return args[0], args[1:]
}

// findCommand finds a command by name
func findCommand(name string) Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage: pagepulsectl [command] [args...]")
	fmt.Println("Available commands:")

	for _, cmd := range commands {
		fmt.Printf("  %s: %s\n", cmd.Name(), cmd.Description())
	}
}

// showUsageAndExit shows usage information and exits
func showUsageAndExit() {
	printUsage()
	os.Exit(1)
}
