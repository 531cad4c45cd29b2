// Command seeder fills the profile store with demo users.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker"
	logpkg "github.com/kailas-cloud/matchmaker/internal/logger"
)

const app = "seeder"

var (
	driver   string
	addr     string
	password string
	debug    bool

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "seeder loads demo users into the matchmaker profile store",
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "redis", "store driver: redis or valkey")
	rootCmd.PersistentFlags().StringVar(&addr, "addr", envOr("MATCHMAKER_DB_ADDR", "localhost:6379"), "store address")
	rootCmd.PersistentFlags().StringVar(&password, "password", os.Getenv("MATCHMAKER_DB_PASSWORD"), "store password")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// connect opens the SDK client for the selected driver.
func connect(ctx context.Context, logger *zap.Logger) (*matchmaker.Client, error) {
	var opt matchmaker.Option
	switch strings.ToLower(driver) {
	case "redis":
		opt = matchmaker.WithRedis(addr, password)
	case "valkey":
		opt = matchmaker.WithValkey(addr, password)
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}
	c, err := matchmaker.New(ctx, opt, matchmaker.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return c, nil
}

func newLogger() (*zap.Logger, error) {
	level := "info"
	if debug {
		level = "debug"
	}
	l, err := logpkg.NewLogger("local", level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return l, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
