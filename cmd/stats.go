package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnhub/internal/dashboard"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a learner's dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)

		user := v.GetString("user")
		if user == "" {
			return errors.New("--user is required")
		}

		st, err := openStore(v)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := dashboard.NewService(st.QuizResultRepo(), st.ProgressRepo(), st.ActivityRepo())
		d, err := svc.Build(cmd.Context(), user)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if v.GetBool("json") {
			return printJSON(out, d)
		}

		s := d.Stats
		fmt.Fprintf(out, "Quizzes taken:   %d\n", s.QuizzesTaken)
		fmt.Fprintf(out, "Correct answers: %d/%d\n", s.TotalCorrect, s.TotalQuestions)
		fmt.Fprintf(out, "Average score:   %d%%\n", s.AveragePercent)
		fmt.Fprintf(out, "Best score:      %d%%\n", s.BestPercent)
		fmt.Fprintf(out, "Current streak:  %d day(s), next milestone %d\n", s.CurrentStreak, s.NextStreakMilestone)

		if len(d.Progress) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Course progress")
			fmt.Fprintln(out, strings.Repeat("─", 48))
			ids := make([]string, 0, len(d.Progress))
			for id := range d.Progress {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Fprintf(out, "%-40s  %3d%%\n", truncate(id, 40), d.Progress[id])
			}
		}

		if len(d.RecentActivity) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Recent activity")
			fmt.Fprintln(out, strings.Repeat("─", 48))
			for _, a := range d.RecentActivity {
				fmt.Fprintf(out, "%-16s  %-6s  %s\n", a.Date.Local().Format("2006-01-02 15:04"), a.Type, a.Title)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().String("user", "", "Identity to build the dashboard for")
	statsCmd.Flags().Bool("json", false, "Print the dashboard as JSON")
}
