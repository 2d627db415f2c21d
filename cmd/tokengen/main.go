// Command tokengen mints an actor token for local use and integration tests.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/config"
	"github.com/spec-kit/assignment-service/internal/domain"
)

func main() {
	employeeID := flag.String("employee", "", "employee id to act as (required)")
	role := flag.String("role", string(domain.EmployeeRoleIntern), "role recorded in the token (INTERN or ADMIN)")
	flag.Parse()

	if strings.TrimSpace(*employeeID) == "" {
		flag.Usage()
		os.Exit(2)
	}
	r := domain.EmployeeRole(strings.ToUpper(*role))
	if !r.Valid() {
		log.Fatalf("unknown role %q", *role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes, cfg.Auth.Issuer)
	token, expiresAt, err := tokens.GenerateToken(*employeeID, r)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format(time.RFC3339))
	fmt.Println(token)
}
