package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/coldreach/warmstack/internal/config"
	"github.com/coldreach/warmstack/internal/database"
	"github.com/coldreach/warmstack/internal/repository"
	"github.com/coldreach/warmstack/server"
)

func main() {
	app := &cli.App{
		Name:  "warmstack",
		Usage: "mailbox warmup and deliverability service",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Run database migrations",
				Action: runMigrate,
			},
			{
				Name:   "server",
				Usage:  "Start the application server",
				Action: runServer,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runMigrate(c *cli.Context) error {
	cfg, err := config.InitConfig()
	if err != nil {
		return err
	}

	warmstackDB, err := database.InitDatabase(cfg.DatabaseConfig)
	if err != nil {
		return err
	}

	if err := repository.MigrateDB(cfg.DatabaseConfig, warmstackDB); err != nil {
		return err
	}
	log.Println("Database migration completed successfully")
	return nil
}

func runServer(c *cli.Context) error {
	cfg, err := config.InitConfig()
	if err != nil {
		return err
	}

	warmstackDB, err := database.InitDatabase(cfg.DatabaseConfig)
	if err != nil {
		return err
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("WarmStack starting up...")

	srv, err := server.NewServer(cfg, warmstackDB)
	if err != nil {
		return err
	}
	if err := srv.Run(); err != nil {
		return err
	}

	log.Println("Shutdown complete")
	return nil
}
