// Command devtoken prints a bearer token for the HS256 development verifier.
//
//	AUTH_DEV_SECRET=s3cret go run ./cmd/devtoken -email editor@example.com
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/newsdesk/newsdesk-server/internal/tokens"
	"github.com/newsdesk/newsdesk-server/pkg/logger"
)

func main() {
	email := flag.String("email", "", "email claim (required)")
	name := flag.String("name", "", "display name claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	secret := flag.String("secret", os.Getenv("AUTH_DEV_SECRET"), "HS256 secret, defaults to AUTH_DEV_SECRET")
	flag.Parse()

	if *email == "" || *secret == "" {
		flag.Usage()
		os.Exit(2)
	}
	tok, err := tokens.MintDevToken(*secret, *email, *name, *ttl)
	if err != nil {
		logger.Fatalf("mint token: %v", err)
	}
	fmt.Println(tok)
}
