package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/internal/schema"
	"github.com/paperdesk/paperdesk/internal/ui"
)

var newCmd = &cobra.Command{
	Use:     "new",
	GroupID: "paper",
	Short:   "Create a new exam paper",
	Long: `Create a new exam paper and save it locally.

The paper gets a temporary id immediately and is pushed to the server in
the background; if the push succeeds the server-assigned id replaces the
temporary one.

The exam date accepts natural language:
  pd new --subject Math --class "Class 9" --date "next friday"
  pd new --interactive`,
	Run: func(cmd *cobra.Command, args []string) {
		setup := schema.Setup{}
		setup.Class, _ = cmd.Flags().GetString("class")
		setup.Subject, _ = cmd.Flags().GetString("subject")
		setup.ExamType, _ = cmd.Flags().GetString("exam-type")
		setup.DurationMins, _ = cmd.Flags().GetInt("duration")
		setup.TotalMarks, _ = cmd.Flags().GetInt("marks")
		setup.Columns, _ = cmd.Flags().GetInt("columns")
		setup.SchoolName, _ = cmd.Flags().GetString("school")

		dateInput, _ := cmd.Flags().GetString("date")

		interactive, _ := cmd.Flags().GetBool("interactive")
		if interactive {
			if err := runSetupForm(&setup, &dateInput); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		if dateInput != "" {
			date, err := parseExamDate(dateInput)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			setup.ExamDate = date
		}

		cfg := loadConfig()
		st := openStore(cfg)
		defer st.Close()
		engine := newEngine(cfg, st)

		paper := schema.NewPaper(setup)
		if err := engine.SavePaper(context.Background(), paper); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		// After Wait the background push has either swapped the temporary
		// id for the server-assigned one or left it for a later sync.
		engine.Wait()

		fmt.Printf("%s Created %s\n", ui.RenderPass("✓"), ui.RenderTitle(paper.Title()))
		fmt.Printf("   ID: %s\n", ui.RenderDim(paper.ID.Value))
	},
}

// runSetupForm collects the paper setup interactively.
func runSetupForm(setup *schema.Setup, dateInput *string) error {
	duration := strconv.Itoa(setup.DurationMins)
	marks := strconv.Itoa(setup.TotalMarks)
	twoColumns := setup.Columns == 2

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Class").Value(&setup.Class),
			huh.NewInput().Title("Subject").Value(&setup.Subject),
			huh.NewSelect[string]().
				Title("Exam type").
				Options(huh.NewOptions(
					"Class Test", "Half Yearly", "Annual", "Model Test", "Pre-Test",
				)...).
				Value(&setup.ExamType),
			huh.NewInput().Title("Exam date").
				Description("e.g. 2026-09-15 or \"next friday\"").
				Value(dateInput),
		),
		huh.NewGroup(
			huh.NewInput().Title("Duration (minutes)").Value(&duration),
			huh.NewInput().Title("Total marks").Value(&marks),
			huh.NewConfirm().Title("Two-column layout?").Value(&twoColumns),
			huh.NewInput().Title("School name").Value(&setup.SchoolName),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if v, err := strconv.Atoi(duration); err == nil {
		setup.DurationMins = v
	}
	if v, err := strconv.Atoi(marks); err == nil {
		setup.TotalMarks = v
	}
	if twoColumns {
		setup.Columns = 2
	} else {
		setup.Columns = 1
	}
	return nil
}

// parseExamDate accepts either YYYY-MM-DD or English natural language.
func parseExamDate(input string) (string, error) {
	if t, err := time.Parse("2006-01-02", input); err == nil {
		return t.Format("2006-01-02"), nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(input, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to parse date %q: %w", input, err)
	}
	if r == nil {
		return "", fmt.Errorf("could not understand date %q", input)
	}
	return r.Time.Format("2006-01-02"), nil
}

func init() {
	newCmd.Flags().String("class", "", "Class name (e.g. \"Class 9\")")
	newCmd.Flags().String("subject", "", "Subject name")
	newCmd.Flags().String("exam-type", "", "Exam type (e.g. \"Half Yearly\")")
	newCmd.Flags().String("date", "", "Exam date (YYYY-MM-DD or natural language)")
	newCmd.Flags().Int("duration", 180, "Exam duration in minutes")
	newCmd.Flags().Int("marks", 100, "Total marks")
	newCmd.Flags().Int("columns", 1, "Print layout columns (1 or 2)")
	newCmd.Flags().String("school", "", "School name printed on the header")
	newCmd.Flags().BoolP("interactive", "i", false, "Fill in the setup interactively")

	rootCmd.AddCommand(newCmd)
}
