package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnhub/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)

		email := v.GetString("email")
		if email == "" {
			return errors.New("--email is required")
		}

		issuer, err := auth.NewIssuer(v.GetString("jwt-secret"), v.GetString("jwt-issuer"))
		if err != nil {
			return err
		}
		tok, err := issuer.Issue(email, v.GetDuration("ttl"))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	f := tokenCmd.Flags()
	f.String("email", "", "Identity to put in the email claim")
	f.Duration("ttl", 24*time.Hour, "Token lifetime")
	f.String("jwt-secret", "", "HS256 secret, must match the server's")
	f.String("jwt-issuer", "learnhub", "Issuer claim")
}
