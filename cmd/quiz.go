package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnhub/internal/contentgen"
	"github.com/abhisek/learnhub/internal/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate, take and review quizzes",
}

var quizGenerateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Print generated quiz questions as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		ctx := cmd.Context()

		st, provider, err := openProvider(ctx, v)
		if err != nil {
			return err
		}
		defer st.Close()

		gen := contentgen.New(provider, contentgen.DefaultConfig())
		questions, err := gen.GenerateQuiz(ctx, strings.Join(args, " "), v.GetInt("count"))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{"questions": questions})
	},
}

var quizTakeCmd = &cobra.Command{
	Use:   "take <topic>",
	Short: "Take a generated quiz in the terminal and store the result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		ctx := cmd.Context()

		user := v.GetString("user")
		if user == "" {
			return errors.New("--user is required")
		}

		st, provider, err := openProvider(ctx, v)
		if err != nil {
			return err
		}
		defer st.Close()

		gen := contentgen.New(provider, contentgen.DefaultConfig())
		attempt := quiz.NewAttempt(strings.Join(args, " "))
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Generating questions about %q...\n", attempt.Topic())
		if err := attempt.Generate(ctx, gen, v.GetInt("count")); err != nil {
			return err
		}

		in := bufio.NewReader(cmd.InOrStdin())
		for i, q := range attempt.Questions() {
			if err := askQuestion(in, out, attempt, i, q); err != nil {
				return err
			}
		}

		result, err := attempt.Submit(user)
		if err != nil {
			return err
		}
		id, err := quiz.NewService(st.QuizResultRepo(), st.ActivityRepo()).Submit(ctx, result)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\nScore: %d/%d\n", result.Score, result.Total)
		for i, r := range result.Responses {
			if !r.IsCorrect {
				fmt.Fprintf(out, "  %d. %s\n     you chose %q, correct is %q\n", i+1, r.Question, r.Selected, r.Correct)
			}
		}
		fmt.Fprintf(out, "Saved as %s\n", id)
		return nil
	},
}

// askQuestion prompts until a valid option letter is entered.
func askQuestion(in *bufio.Reader, out io.Writer, attempt *quiz.Attempt, i int, q quiz.Question) error {
	fmt.Fprintf(out, "\n%d. %s\n", i+1, q.Question)
	for j, opt := range q.Options {
		fmt.Fprintf(out, "   %c) %s\n", 'A'+j, opt)
	}
	for {
		fmt.Fprint(out, "> ")
		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		choice := strings.ToUpper(strings.TrimSpace(line))
		if len(choice) == 1 {
			if idx := int(choice[0]) - 'A'; idx >= 0 && idx < len(q.Options) {
				return attempt.Answer(i, q.Options[idx])
			}
		}
		if err != nil {
			return fmt.Errorf("input closed with %d questions unanswered", attempt.Remaining())
		}
		fmt.Fprintf(out, "   enter a letter between A and %c\n", 'A'+len(q.Options)-1)
	}
}

var quizHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored quiz results for a user",
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

		results, err := quiz.NewService(st.QuizResultRepo(), st.ActivityRepo()).History(cmd.Context(), user, v.GetInt("limit"))
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No quiz results found.")
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-19s  %-36s  %s\n", "Taken", "Topic", "Score")
		fmt.Fprintln(out, strings.Repeat("─", 68))
		for _, r := range results {
			fmt.Fprintf(out, "%-19s  %-36s  %d/%d\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"), truncate(r.Topic, 36), r.Score, r.Total)
		}
		return nil
	},
}

func init() {
	quizGenerateCmd.Flags().IntP("count", "n", contentgen.DefaultQuestionCount, "Number of questions")
	quizTakeCmd.Flags().IntP("count", "n", contentgen.DefaultQuestionCount, "Number of questions")
	quizTakeCmd.Flags().String("user", "", "Identity the result is stored under")
	quizHistoryCmd.Flags().String("user", "", "Identity to list results for")
	quizHistoryCmd.Flags().IntP("limit", "n", 20, "Number of results to show")

	quizCmd.AddCommand(quizGenerateCmd)
	quizCmd.AddCommand(quizTakeCmd)
	quizCmd.AddCommand(quizHistoryCmd)
}
