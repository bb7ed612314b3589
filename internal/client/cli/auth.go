package cli

import (
	"context"
	"fmt"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for an email and password and creates an account.
// Registration signs the user in immediately, same as a successful login.
// The password policy is checked by the session manager before any network
// round trip.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.sessions.Register(ctx, email, string(password))
	if err != nil {
		fmt.Println("Registration failed:", err.Error())
		return err
	}

	fmt.Printf("Welcome, %s!\n", user.Email)
	return nil
}

// Login prompts the user for credentials and authenticates against the
// backend. On success the identity is mirrored durably, so the next start
// resumes the session without a prompt.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.sessions.Login(ctx, email, string(password))
	if err != nil {
		fmt.Println("Login failed:", err.Error())
		return err
	}

	fmt.Printf("Welcome back, %s!\n", user.Email)
	return nil
}

// Logout clears the session and the retained access token. The gate watchers
// move owner-scoped screens away on the resulting transition.
func (a *App) Logout(ctx context.Context) error {
	a.sessions.Logout(ctx)
	a.api.SetToken("")
	fmt.Println("Logged out")
	return nil
}
