// Command migrate applies or rolls back the database schema.
//
// Usage:
//
//	migrate [-database-url URL] up|down|status
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gestion/authsvc/internal/migrations"
)

func main() {
	databaseURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall timeout")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [-database-url URL] up|down|status")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = migrations.Up(ctx, *databaseURL)
	case "down":
		err = migrations.Down(ctx, *databaseURL)
	case "status":
		err = migrations.Status(ctx, *databaseURL)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
