package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var courseCmd = &cobra.Command{
	Use:   "course <title>",
	Short: "Print generated course content as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		ctx := cmd.Context()

		st, provider, err := openProvider(ctx, v)
		if err != nil {
			return err
		}
		defer st.Close()

		gen, c, err := newGenerator(ctx, v, provider)
		if err != nil {
			return err
		}
		if c != nil {
			defer c.Close()
		}

		content, err := gen.GenerateCourseContent(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), content)
	},
}

func init() {
	courseCmd.Flags().String("redis-addr", "", "Redis address for the course content cache")
	courseCmd.Flags().Duration("course-cache-ttl", 0, "Course content cache TTL (0 disables)")
}
