// Command ftplogin connects to an FTP server, logs in and quits.
//
// The target and credentials come from FTP_CLIENT_SERVER_ADDRESS,
// FTP_CLIENT_USERNAME and FTP_CLIENT_PASSWORD, read from the environment,
// a .env file or a YAML file given with -config.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	ftp "github.com/gonzalop/ftplogin"
	"github.com/gonzalop/ftplogin/internal/config"
	"github.com/gonzalop/ftplogin/internal/logger"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "ftplogin: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("ftplogin", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	envPath := fs.String("env", ".env", "dotenv file loaded into the environment if present")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.LoadDotEnv(*envPath); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closer := logger.New(cfg.Logging, stdout)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := ftp.DialContext(ctx, cfg.Address,
		ftp.WithTimeout(cfg.Timeout),
		ftp.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	log.Info("connected", "addr", cfg.Address, "greeting", client.Greeting().Message())

	session, err := client.Login(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return err
	}

	log.Info("logged in", "user", session.User())

	return session.Quit(ctx)
}
