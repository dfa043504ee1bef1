package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
)

// Bootstrap tool: grants or revokes the admin custom claim for a user so
// the first administrator can be created outside the API.
func main() {
	uid := flag.String("uid", "", "target firebase uid")
	role := flag.String("role", "admin", "role claim to set (admin, member, volunteer)")
	flag.Parse()
	if *uid == "" {
		log.Fatal("uid is required: -uid=xxxxx")
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		log.Fatalf("firebase.NewApp: %v", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatalf("app.Auth: %v", err)
	}

	claims := map[string]interface{}{
		"role":  *role,
		"admin": *role == "admin",
	}

	if err := authClient.SetCustomUserClaims(ctx, *uid, claims); err != nil {
		log.Fatalf("SetCustomUserClaims: %v", err)
	}

	fmt.Printf("ok: role %q set for %s\n", *role, *uid)
}
