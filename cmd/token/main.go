package main

import (
	"flag"
	"fmt"
	"os"

	"blog-admin/pkg/config"
	"blog-admin/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

// Prints a bearer token for BLOG_API_TOKEN signed with JWT_SECRET, or with
// -hash-password a bcrypt hash for ADMIN_PASSWORD_HASH.
func main() {
	var (
		subject      = flag.String("subject", "admin", "token subject")
		role         = flag.String("role", "admin", "token role")
		hashPassword = flag.String("hash-password", "", "print the bcrypt hash of this password and exit")
	)
	flag.Parse()

	if *hashPassword != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*hashPassword), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(hashed))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET must be set")
		os.Exit(1)
	}

	token, err := jwt.NewService(cfg.JWTSecret).GenerateToken(*subject, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
