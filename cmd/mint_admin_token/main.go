package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/pulsenet-backend/internal/http/middleware"
	"github.com/yungbote/pulsenet-backend/internal/platform/envutil"
)

// Prints a bearer token accepted by POST /api/rewards/manual.
func main() {
	var subject string
	var ttl time.Duration
	flag.StringVar(&subject, "subject", "ops", "token subject")
	flag.DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	flag.Parse()

	secret := envutil.String("ADMIN_JWT_SECRET", "")
	if secret == "" {
		fmt.Println("ADMIN_JWT_SECRET is not set")
		os.Exit(1)
	}
	token, err := middleware.SignAdminToken(secret, subject, ttl)
	if err != nil {
		fmt.Printf("sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
