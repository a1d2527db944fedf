package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnhub/internal/tutor"
)

var tutorCmd = &cobra.Command{
	Use:   "tutor <prompt...>",
	Short: "Ask the tutor a one-shot question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		ctx := cmd.Context()

		st, provider, err := openProvider(ctx, v)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := tutor.NewService(provider, st.ActivityRepo(), tutor.DefaultConfig())
		answer, err := svc.Ask(ctx, v.GetString("user"), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

func init() {
	tutorCmd.Flags().String("user", "", "Record the exchange in this user's activity log")
}
