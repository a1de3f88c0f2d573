package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/gymsession/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-s", "-t", "-n", "-e", "-p", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "HTTP listen address (empty disables)")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "gRPC listen address (empty disables)")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "token signing key")
	tokenValidity := fs.Int("t", int(cfg.TokenValidity.Minutes()), "token validity (in minutes)")
	fs.StringVar(&cfg.SeedName, "n", cfg.SeedName, "seed user name")
	fs.StringVar(&cfg.SeedEmail, "e", cfg.SeedEmail, "seed user email (empty disables seeding)")
	fs.StringVar(&cfg.SeedPassword, "p", cfg.SeedPassword, "seed user password")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.TokenValidity = time.Duration(*tokenValidity) * time.Minute
		}
	})
	return nil
}
