// gocontactctl runs maintenance and diagnostic tasks against the OTP store
// configured for gocontact.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func newApp() *cli.App {
	return &cli.App{
		Name:    "gocontactctl",
		Usage:   "Manage the gocontact OTP store",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				EnvVars: []string{"CONFIG_PATH"},
				Value:   "./config/config.yaml",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Apply embedded SQL migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "driver",
						Usage: "postgres or sqlite (defaults to modules.otp.store.driver)",
					},
				},
				Action: migrateAction,
			},
			{
				Name:   "sweep",
				Usage:  "Delete expired OTP records once",
				Action: sweepAction,
			},
			{
				Name:  "issue",
				Usage: "Issue an OTP; the email is written to the log instead of sent",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
				},
				Action: issueAction,
			},
			{
				Name:  "verify",
				Usage: "Verify and consume an OTP",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "otp", Required: true},
				},
				Action: verifyAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
