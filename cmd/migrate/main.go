package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdugdh24/tapcard-backend/internal/config"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/database"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [up|down|version]\n", os.Args[0])
	}
	flag.Parse()

	cmd := "up"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	url := cfg.Database.GetURL()

	switch cmd {
	case "up":
		err = database.RunMigrations(url)
	case "down":
		err = database.RollbackMigrations(url)
	case "version":
		var (
			version uint
			dirty   bool
		)
		version, dirty, err = database.MigrationVersion(url)
		if err == nil {
			fmt.Printf("version=%d dirty=%t\n", version, dirty)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Printf("Migration %s failed: %v\n", cmd, err)
		os.Exit(1)
	}
	if cmd != "version" {
		fmt.Printf("Migration %s completed\n", cmd)
	}
}
