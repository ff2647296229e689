package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "paper",
	Short:   "List all papers",
	Long: `List every paper in the local collection.

The listing is served from local storage immediately; a background
refresh pulls in papers created on other devices for the next run.
Papers not yet pushed to the server are marked "pending".`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		st := openStore(cfg)
		defer st.Close()
		engine := newEngine(cfg, st)

		papers, err := engine.LoadAll(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if len(papers) == 0 {
			fmt.Println("No papers yet. Create one with 'pd new'.")
			engine.Wait()
			return
		}

		for _, p := range papers {
			marker := ui.RenderPass("●")
			state := ""
			if p.ID.Temporary() {
				marker = ui.RenderWarn("○")
				state = ui.RenderWarn(" (pending)")
			}
			fmt.Printf("%s %s%s\n", marker, ui.RenderTitle(p.Title()), state)
			fmt.Printf("  %s\n", ui.RenderDim(fmt.Sprintf("id: %s  questions: %d  marks: %.0f  updated: %s",
				p.ID.Value, len(p.Questions), p.TotalMarks(), p.UpdatedAt.Local().Format("2006-01-02 15:04"))))
		}

		engine.Wait()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
