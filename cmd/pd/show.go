package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/internal/schema"
	"github.com/paperdesk/paperdesk/internal/store"
	"github.com/paperdesk/paperdesk/internal/ui"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	GroupID: "paper",
	Short:   "Show a paper's structure",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		st := openStore(cfg)
		defer st.Close()

		paper := findPaper(st, args[0])
		if paper == nil {
			fmt.Fprintf(os.Stderr, "Error: no paper with id %s\n", args[0])
			os.Exit(1)
		}

		fmt.Printf("%s\n", ui.RenderTitle(paper.Title()))
		fmt.Printf("%s\n", ui.RenderDim(fmt.Sprintf("id: %s", paper.ID.Value)))
		if paper.ID.Temporary() {
			fmt.Printf("%s not yet pushed to server\n", ui.RenderWarn("⚠"))
		}
		if paper.Setup.ExamDate != "" {
			fmt.Printf("Date: %s\n", paper.Setup.ExamDate)
		}
		fmt.Printf("Duration: %d min   Marks: %d   Layout: %d column(s)\n",
			paper.Setup.DurationMins, paper.Setup.TotalMarks, paper.Setup.Columns)

		if len(paper.Questions) == 0 {
			fmt.Println("\nNo questions yet.")
			return
		}

		fmt.Println()
		for i := range paper.Questions {
			q := &paper.Questions[i]
			fmt.Printf("%2d. [%s] %.1f marks, %d block(s)\n",
				q.Number, q.Type, q.TotalMarks(), len(q.Blocks))
			for j := range q.SubQuestions {
				sq := &q.SubQuestions[j]
				fmt.Printf("      %s) %.1f marks, %d block(s)\n", sq.Label, sq.Marks, len(sq.Blocks))
			}
		}
		fmt.Printf("\nTotal: %.1f marks across %d questions\n", paper.TotalMarks(), len(paper.Questions))
	},
}

// findPaper resolves an id against the local store without touching the
// network.
func findPaper(st store.Store, id string) *schema.Paper {
	papers, err := st.LoadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, p := range papers {
		if p.ID.Value == id {
			return p
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(showCmd)
}
