package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"restaurant-offers/internal/approval"
	"restaurant-offers/internal/config"
	"restaurant-offers/internal/database"
	"restaurant-offers/internal/sheet"
)

const usage = `Usage: approvalctl [flags] [command]

Commands:
  list      Print all pending offers and exit
  approve   Approve all pending offers and remove them from the sheet
  (none)    Interactive menu

Flags:
`

func main() {
	configFile := flag.String("config", "", "Path to JSON config file")
	skipConfirm := flag.Bool("yes", false, "Skip the confirmation prompt when approving")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Could not load .env file: %v", err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.Open(cfg.Database.URL, cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	sheetStore, err := sheet.OpenCSV(cfg.Sheet.Path)
	if err != nil {
		log.Fatalf("Failed to open pending sheet: %v", err)
	}

	// One shared reader: the menu and the confirmation prompt would
	// otherwise steal buffered input from each other.
	stdin := bufio.NewReader(os.Stdin)
	runner := approval.New(sheetStore, db, stdin, os.Stdout)
	ctx := context.Background()

	switch flag.Arg(0) {
	case "list":
		if err := runner.ListPending(ctx); err != nil {
			log.Fatalf("Failed to list pending offers: %v", err)
		}
	case "approve":
		runApprove(ctx, runner, *skipConfirm)
	case "":
		runMenu(ctx, runner, stdin, *skipConfirm)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(2)
	}
}

func runApprove(ctx context.Context, runner *approval.Runner, skipConfirm bool) {
	_, err := runner.ApproveAll(ctx, skipConfirm)
	if errors.Is(err, approval.ErrCancelled) {
		return
	}
	if err != nil {
		log.Fatalf("Approval run failed: %v", err)
	}
}

// runMenu loops over the interactive menu until the operator exits.
func runMenu(ctx context.Context, runner *approval.Runner, stdin *bufio.Reader, skipConfirm bool) {
	for {
		fmt.Println()
		fmt.Println("=== Offer Approval ===")
		fmt.Println("1. View pending offers")
		fmt.Println("2. Approve all pending offers")
		fmt.Println("3. Exit")
		fmt.Print("Choose an option: ")

		line, err := stdin.ReadString('\n')
		if err != nil {
			return
		}

		switch strings.TrimSpace(line) {
		case "1":
			if err := runner.ListPending(ctx); err != nil {
				log.Printf("Failed to list pending offers: %v", err)
			}
		case "2":
			_, err := runner.ApproveAll(ctx, skipConfirm)
			if err != nil && !errors.Is(err, approval.ErrCancelled) {
				log.Printf("Approval run failed: %v", err)
			}
		case "3", "q", "exit":
			return
		default:
			fmt.Println("Invalid option.")
		}
	}
}
