// Command sgnl manages Signal account identity and registration.
//
// Usage:
//
//	sgnl register <number>   Register a new Signal account (primary device)
//	sgnl devices              List registered devices for this account
//	sgnl profile              Show or set profile information
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	flags "github.com/jessevdk/go-flags"

	client "github.com/gwillem/signal-go"
	"github.com/gwillem/signal-go/internal/registration"
	"github.com/gwillem/signal-go/internal/store"
)

type globalOpts struct {
	DB       string `long:"db" description:"Path to database file"`
	Account  string `short:"a" long:"account" description:"Phone number of account to use (e.g. +1234567890)"`
	Verbose  bool   `short:"v" long:"verbose" description:"Enable verbose logging"`
	DebugDir string `long:"debug-dir" description:"Debug directory passed to the client (nothing is written to it)"`

	Register     registerCommand     `command:"register" description:"Register a new Signal account (primary device)"`
	Devices      devicesCommand      `command:"devices" description:"List registered devices for this account"`
	AccountCmd   accountCommand      `command:"account" description:"Show or update account settings"`
	UpdateAttr   updateAttrCommand   `command:"update-attributes" description:"Update account attributes on server (can fix message delivery)"`
	RefreshKeys  refreshKeysCommand  `command:"refresh-keys" description:"Re-upload local pre-keys to server (fix pre-key mismatch)"`
	CheckPreKeys checkPreKeysCommand `command:"check-prekeys" description:"Verify local pre-keys match identity key (debug)"`
	Profile      profileCommand      `command:"profile" description:"Show or set profile information"`
}

var opts globalOpts

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.SubcommandsOptional = false

	_, err := parser.Parse()
	os.Exit(exitCode(err))
}

// exitCode maps a command error onto the CLI's status-code taxonomy: 0
// success, 1 user error (bad input, CAPTCHA needed, incorrect PIN), 2
// unexpected error, 3 I/O error, 4 untrusted identity key encountered.
// Anything not recognized as one of the purpose-built error kinds is
// treated as an I/O-class failure, since that is what an unadorned
// wrapped error (network, enclave, filesystem) looks like at this
// boundary.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var flagsErr *flags.Error
	if errors.As(err, &flagsErr) {
		if flagsErr.Type == flags.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var captcha *registration.CaptchaRequiredError
	var pinLocked *registration.PinLockedError
	var incorrectPin *registration.IncorrectPinError
	var unexpected *registration.UnexpectedError
	var untrusted *store.UntrustedIdentityError

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	switch {
	case errors.As(err, &captcha), errors.As(err, &pinLocked), errors.As(err, &incorrectPin):
		return 1
	case errors.As(err, &unexpected):
		return 2
	case errors.As(err, &untrusted):
		return 4
	default:
		return 3
	}
}

func clientOpts() []client.Option {
	var copts []client.Option

	// Resolve database path from --db or --account
	dbPath := opts.DB
	if dbPath == "" && opts.Account != "" {
		var err error
		dbPath, err = client.DiscoverDBByNumber(opts.Account)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if dbPath != "" {
		copts = append(copts, client.WithDBPath(dbPath))
	}

	if opts.Verbose {
		copts = append(copts, client.WithLogger(log.New(os.Stderr, "", log.LstdFlags)))
	}
	if opts.DebugDir != "" {
		copts = append(copts, client.WithDebugDir(opts.DebugDir))
	}
	return copts
}

// loadClient opens the account selected by --db/--account, exiting the
// process on failure. Commands that only read local state use this instead
// of handling the "no account" error themselves.
func loadClient() *client.Client {
	c := client.NewClient(clientOpts()...)
	if err := c.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return c
}
