package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/gymsession/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
// Only the flags listed here are looked at, see flagx.FilterArgs.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-r", "-i", "-l"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerAddr, "a", cfg.ServerAddr, "server address")
	fs.StringVar(&cfg.Transport, "t", cfg.Transport, "transport: http or grpc")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local session database path")
	fs.DurationVar(&cfg.RequestTimeout, "r", cfg.RequestTimeout, "request timeout")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
	return nil
}
