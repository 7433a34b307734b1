package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
)

// Seeds the settings table with the default print cost and low stock
// threshold. Safe to re-run: existing rows are left untouched unless -force
// is given.
func main() {
	force := flag.Bool("force", false, "Overwrite existing setting values with the defaults")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}

	models.MigrateTable()

	if *force {
		defaults := map[string]string{
			models.SettingPrintCostPerMeter: models.DefaultPrintCostPerMeter.String(),
			models.SettingLowStockThreshold: models.DefaultLowStockThreshold.String(),
		}
		for key, value := range defaults {
			if _, err := models.UpdateSetting(ctx, key, value); err != nil {
				fmt.Fprintf(os.Stderr, "failed to reset %s: %v\n", key, err)
				os.Exit(1)
			}
			fmt.Printf("reset %s = %s\n", key, value)
		}
		return
	}

	if err := models.SeedDefaultSettings(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed settings: %v\n", err)
		os.Exit(1)
	}

	settings, err := models.LoadSettings(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read back settings: %v\n", err)
		os.Exit(1)
	}
	for _, s := range settings {
		fmt.Printf("%s = %s\n", s.Key, s.Value)
	}
}
