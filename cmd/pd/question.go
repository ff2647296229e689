package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/internal/schema"
	"github.com/paperdesk/paperdesk/internal/ui"
)

var questionCmd = &cobra.Command{
	Use:     "question",
	GroupID: "paper",
	Short:   "Edit a paper's questions",
}

var questionAddCmd = &cobra.Command{
	Use:   "add <paper-id>",
	Short: "Add a question to a paper",
	Long: `Add a question of the given type to a paper.

Valid types: ` + questionTypeList() + `

Creative questions can carry up to four labelled sub-questions; add
them with --sub-questions.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		typeFlag, _ := cmd.Flags().GetString("type")
		marks, _ := cmd.Flags().GetFloat64("marks")
		position, _ := cmd.Flags().GetInt("at")
		subQuestions, _ := cmd.Flags().GetInt("sub-questions")

		qType := schema.QuestionType(typeFlag)
		if !qType.IsValid() {
			fmt.Fprintf(os.Stderr, "Error: unknown question type %q\nValid types: %s\n",
				typeFlag, questionTypeList())
			os.Exit(1)
		}

		cfg := loadConfig()
		st := openStore(cfg)
		defer st.Close()
		engine := newEngine(cfg, st)

		paper := findPaper(st, args[0])
		if paper == nil {
			fmt.Fprintf(os.Stderr, "Error: no paper with id %s\n", args[0])
			os.Exit(1)
		}

		q := schema.NewQuestion(qType, marks)
		for i := 0; i < subQuestions; i++ {
			if _, err := q.AddSubQuestion(0); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		if position > 0 {
			paper.InsertQuestion(position-1, q)
		} else {
			paper.AppendQuestion(q)
		}

		if err := engine.SavePaper(context.Background(), paper); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		engine.Wait()

		fmt.Printf("%s Added %s question to %s (now %d questions)\n",
			ui.RenderPass("✓"), qType, ui.RenderTitle(paper.Title()), len(paper.Questions))
	},
}

var questionRemoveCmd = &cobra.Command{
	Use:   "remove <paper-id> <question-number>",
	Short: "Remove a question from a paper",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		st := openStore(cfg)
		defer st.Close()
		engine := newEngine(cfg, st)

		paper := findPaper(st, args[0])
		if paper == nil {
			fmt.Fprintf(os.Stderr, "Error: no paper with id %s\n", args[0])
			os.Exit(1)
		}

		var number int
		if _, err := fmt.Sscanf(args[1], "%d", &number); err != nil || number < 1 || number > len(paper.Questions) {
			fmt.Fprintf(os.Stderr, "Error: question number must be between 1 and %d\n", len(paper.Questions))
			os.Exit(1)
		}

		removed := paper.Questions[number-1]
		if !paper.RemoveQuestion(removed.ID) {
			fmt.Fprintf(os.Stderr, "Error: failed to remove question %d\n", number)
			os.Exit(1)
		}

		if err := engine.SavePaper(context.Background(), paper); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		engine.Wait()

		fmt.Printf("%s Removed question %d; remaining questions renumbered\n",
			ui.RenderPass("✓"), number)
	},
}

var questionMoveCmd = &cobra.Command{
	Use:   "move <paper-id> <from> <to>",
	Short: "Move a question to a new position",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		st := openStore(cfg)
		defer st.Close()
		engine := newEngine(cfg, st)

		paper := findPaper(st, args[0])
		if paper == nil {
			fmt.Fprintf(os.Stderr, "Error: no paper with id %s\n", args[0])
			os.Exit(1)
		}

		var from, to int
		if _, err := fmt.Sscanf(args[1], "%d", &from); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid position %q\n", args[1])
			os.Exit(1)
		}
		if _, err := fmt.Sscanf(args[2], "%d", &to); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid position %q\n", args[2])
			os.Exit(1)
		}

		if err := paper.MoveQuestion(from-1, to-1); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := engine.SavePaper(context.Background(), paper); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		engine.Wait()

		fmt.Printf("%s Moved question %d to position %d\n", ui.RenderPass("✓"), from, to)
	},
}

func questionTypeList() string {
	names := make([]string, len(schema.QuestionTypes))
	for i, t := range schema.QuestionTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func init() {
	questionAddCmd.Flags().String("type", string(schema.QuestionShortAnswer), "Question type")
	questionAddCmd.Flags().Float64("marks", 5, "Marks for the question")
	questionAddCmd.Flags().Int("at", 0, "1-based position to insert at (default: append)")
	questionAddCmd.Flags().Int("sub-questions", 0, "Number of sub-questions (creative questions only)")

	questionCmd.AddCommand(questionAddCmd)
	questionCmd.AddCommand(questionRemoveCmd)
	questionCmd.AddCommand(questionMoveCmd)
	rootCmd.AddCommand(questionCmd)
}
