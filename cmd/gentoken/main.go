// Command gentoken mints a bearer token for local API testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/daxreyes/bushfire-beacon/internal/auth"
)

func main() {
	subject := flag.String("subject", "", "user id to place in the token subject")
	audience := flag.String("audience", "", "optional audience claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "Error: SECRET_KEY is required")
		os.Exit(1)
	}
	if *subject == "" {
		fmt.Fprintln(os.Stderr, "Error: -subject is required")
		os.Exit(1)
	}

	token, err := auth.NewTokenCodec(secret).Issue(*subject, *audience, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
	fmt.Println("\nTest with:")
	fmt.Printf("curl -H 'Authorization: Bearer %s' http://localhost:8080/api/v1/users/me\n", token)
}
