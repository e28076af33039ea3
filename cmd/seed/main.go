package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/dhiya-foods/orderboard/internal/backend"
	"github.com/dhiya-foods/orderboard/internal/config"
	"github.com/dhiya-foods/orderboard/internal/enum"
	"github.com/dhiya-foods/orderboard/internal/menu"
)

// sampleMenu is written by -sample-menu so a fresh install has something to
// order from.
var sampleMenu = []menu.Item{
	{Name: "Samosa", Price: 2000},
	{Name: "Chai", Price: 1500},
	{Name: "Vada Pav", Price: 2500},
	{Name: "Masala Dosa", Price: 6000},
	{Name: "Pav Bhaji", Price: 5500},
	{Name: "Lassi", Price: 3000},
}

func main() {
	// CLI flags
	sampleMenuPath := flag.String("sample-menu", "", "Write a starter menu CSV to this path")
	force := flag.Bool("force", false, "Overwrite an existing file at -sample-menu")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *sampleMenuPath != "" {
		if err := writeSampleMenu(*sampleMenuPath, *force); err != nil {
			log.Fatalf("Failed to write sample menu: %v", err)
		}
		log.Printf("Wrote sample menu to %s", *sampleMenuPath)
	}

	// Open bootstraps the medium: migrations, CSV header, or sheet header.
	ctx := context.Background()
	_, closeStore, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to prepare %s order store: %v", cfg.StoreBackend, err)
	}
	closeStore()

	fmt.Println("=== Seed Complete ===")
	fmt.Printf("Store backend: %s\n", cfg.StoreBackend)
	switch cfg.StoreBackend {
	case enum.StoreBackendCSV:
		fmt.Printf("Orders file:   %s\n", cfg.OrdersFile)
	case enum.StoreBackendSheets:
		fmt.Printf("Spreadsheet:   %s (tab %s)\n", cfg.SheetsSpreadsheetID, cfg.SheetsTab)
	}
	fmt.Printf("Menu source:   %s\n", cfg.MenuSource)
}

func writeSampleMenu(path string, force bool) error {
	cat, err := menu.New(sampleMenu)
	if err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}
	if err != nil {
		return err
	}
	if err := cat.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
