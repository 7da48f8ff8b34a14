package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/agritech/agriclient/internal/auth"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a new account",
	RunE:  runSignup,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session token",
	RunE:  runLogout,
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Request a password reset OTP",
	RunE:  runForgotPassword,
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Reset the password using an OTP",
	RunE:  runResetPassword,
}

func init() {
	rootCmd.AddCommand(signupCmd, loginCmd, logoutCmd, forgotPasswordCmd, resetPasswordCmd)
}

func runSignup(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	store := auth.NewStore(a.gw, a.tokens, a.logger)

	username, err := promptLine("Username: ")
	if err != nil {
		return err
	}
	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}

	store.SetUsername(username)
	store.SetEmail(email)
	store.SetPassword(password)
	store.SetConfirmPassword(confirm)

	if !store.CreateAccount(cmd.Context()) {
		return authFailure(store, "signup failed")
	}
	fmt.Println("Account created. You can now log in.")
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	store := auth.NewStore(a.gw, a.tokens, a.logger)

	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	store.SetEmail(email)
	store.SetPassword(password)

	if !store.Login(cmd.Context()) {
		return authFailure(store, "login failed")
	}
	fmt.Printf("Logged in as %s.\n", email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	store := auth.NewStore(a.gw, a.tokens, a.logger)

	if !store.Logout() {
		return fmt.Errorf("logout failed")
	}
	fmt.Println("Logged out.")
	return nil
}

func runForgotPassword(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	store := auth.NewStore(a.gw, a.tokens, a.logger)

	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	store.SetEmail(email)

	if !store.ForgotPassword(cmd.Context()) {
		return authFailure(store, "password reset request failed")
	}
	fmt.Println("Check your email for the reset OTP, then run: agritech reset-password")
	return nil
}

func runResetPassword(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	store := auth.NewStore(a.gw, a.tokens, a.logger)

	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	otp, err := promptLine("OTP: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("New password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm new password: ")
	if err != nil {
		return err
	}

	store.SetEmail(email)
	store.SetOTP(otp)
	store.SetPassword(password)
	store.SetConfirmPassword(confirm)

	if !store.ResetPassword(cmd.Context()) {
		return authFailure(store, "password reset failed")
	}
	fmt.Println("Password reset. You can now log in.")
	return nil
}

// authFailure surfaces the user-visible reason when one was emitted;
// unexpected failures were already logged and get a generic message.
func authFailure(store *auth.Store, fallback string) error {
	select {
	case err := <-store.Errors():
		return err
	case <-time.After(100 * time.Millisecond):
		return fmt.Errorf("%s", fallback)
	}
}

func promptLine(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
