// Command token issues a bearer token for the view API, signed with the
// same secret the server is configured with (-s or secret_key in -c file).
//
//	token -subject alice -ttl 1h -c config.json
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/viewstore/internal/flagx"
	"github.com/dmitrijs2005/viewstore/internal/server/auth"
	"github.com/dmitrijs2005/viewstore/internal/server/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(args []string, out io.Writer) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	subject := fs.String("subject", "", "token subject")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(flagx.FilterArgs(args, "-subject", "-ttl")); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if *subject == "" {
		return fmt.Errorf("-subject is required")
	}
	if *ttl <= 0 {
		return fmt.Errorf("-ttl must be positive, got %s", *ttl)
	}

	token, err := auth.GenerateToken(*subject, []byte(cfg.SecretKey), *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
