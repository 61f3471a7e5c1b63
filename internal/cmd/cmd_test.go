package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// TestRootSubcommands tests that all top-level commands are registered
func TestRootSubcommands(t *testing.T) {
	subcommands := map[string]bool{
		"auth":     false,
		"intake":   false,
		"pathway":  false,
		"checkout": false,
		"version":  false,
	}

	for _, cmd := range rootCmd.Commands() {
		if _, exists := subcommands[cmd.Name()]; exists {
			subcommands[cmd.Name()] = true
		}
	}

	for name, found := range subcommands {
		if !found {
			t.Errorf("subcommand '%s' not found on root command", name)
		}
	}
}

// TestAuthSubcommands tests that all auth subcommands are registered
func TestAuthSubcommands(t *testing.T) {
	subcommands := map[string]bool{
		"register": false,
		"login":    false,
		"logout":   false,
		"status":   false,
	}

	for _, cmd := range authCmd.Commands() {
		if _, exists := subcommands[cmd.Name()]; exists {
			subcommands[cmd.Name()] = true
		}
	}

	for name, found := range subcommands {
		if !found {
			t.Errorf("subcommand '%s' not found in auth command", name)
		}
	}
}

// TestAuthLoginFlags tests that auth login has correct flags
func TestAuthLoginFlags(t *testing.T) {
	var loginCmd *cobra.Command
	for _, cmd := range authCmd.Commands() {
		if cmd.Name() == "login" {
			loginCmd = cmd
			break
		}
	}

	if loginCmd == nil {
		t.Fatal("login subcommand not found")
	}

	if loginCmd.Flags().Lookup("email") == nil {
		t.Error("flag 'email' not found on auth login command")
	}
	if loginCmd.Flags().Lookup("password") == nil {
		t.Error("flag 'password' not found on auth login command")
	}
}

// TestAuthRegisterFlags tests that auth register has correct flags
func TestAuthRegisterFlags(t *testing.T) {
	var registerCmd *cobra.Command
	for _, cmd := range authCmd.Commands() {
		if cmd.Name() == "register" {
			registerCmd = cmd
			break
		}
	}

	if registerCmd == nil {
		t.Fatal("register subcommand not found")
	}

	for _, flag := range []string{"email", "password", "phone"} {
		if registerCmd.Flags().Lookup(flag) == nil {
			t.Errorf("flag '%s' not found on auth register command", flag)
		}
	}
}

// TestCheckoutFlags tests that checkout has the plan flag
func TestCheckoutFlags(t *testing.T) {
	if checkoutCmd.Flags().Lookup("plan") == nil {
		t.Error("flag 'plan' not found on checkout command")
	}
}

// TestIntakeRequiresLogin tests that intake refuses to run logged out
func TestIntakeRequiresLogin(t *testing.T) {
	t.Setenv("ORIENTA_CONFIG_DIR", t.TempDir())

	var out bytes.Buffer
	intakeCmd.SetOut(&out)
	intakeCmd.SetErr(&out)

	err := intakeCmd.RunE(intakeCmd, nil)
	if err == nil {
		t.Fatal("intake should fail when not logged in")
	}
	if !strings.Contains(err.Error(), "not logged in") {
		t.Errorf("intake error = %q, want a not-logged-in error", err.Error())
	}
}

// TestPathwayRequiresLogin tests that pathway refuses to run logged out
func TestPathwayRequiresLogin(t *testing.T) {
	t.Setenv("ORIENTA_CONFIG_DIR", t.TempDir())

	err := pathwayCmd.RunE(pathwayCmd, nil)
	if err == nil {
		t.Fatal("pathway should fail when not logged in")
	}
	if !strings.Contains(err.Error(), "not logged in") {
		t.Errorf("pathway error = %q, want a not-logged-in error", err.Error())
	}
}

// TestVersionCommand tests the default version output
func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)

	versionJSON = false
	versionVerbose = false

	if err := runVersion(versionCmd, nil); err != nil {
		t.Fatalf("runVersion() failed: %v", err)
	}

	if !strings.Contains(out.String(), "orienta") {
		t.Errorf("version output = %q, want it to contain 'orienta'", out.String())
	}
}
