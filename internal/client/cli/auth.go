package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"shelfsync/internal/client/api"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for account details and creates a new account. On success
// the session stays logged in and a first sync is kicked off.
func (a *App) Register(ctx context.Context) error {
	account, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email (optional)", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.Register(ctx, account, email, password); err != nil {
		log.Printf("Registration failed: %s", err.Error())
		return err
	}

	fmt.Println("Success!")
	return a.Sync(ctx)
}

// Login prompts for credentials and authenticates. A reachable server is
// required to log in; the inventory itself stays usable offline without a
// session. On success a sync is kicked off immediately.
func (a *App) Login(ctx context.Context) error {
	account, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, account, password); err != nil {
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			log.Printf("Login unsuccessful: wrong username or password")
		case errors.Is(err, api.ErrUnavailable):
			log.Printf("Server unavailable, staying offline")
		default:
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return err
	}

	log.Printf("Login successful")
	return a.Sync(ctx)
}

// Logout ends the session and drops the records the server already has.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		log.Printf("Logout failed: %s", err.Error())
		return err
	}
	fmt.Println("Logged out.")
	return nil
}
