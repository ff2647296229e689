package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/internal/ui"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	GroupID: "paper",
	Short:   "Delete a paper",
	Long: `Delete a paper from the local collection.

If the paper was already pushed to the server, the server copy is
deleted in the background as well.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")

		cfg := loadConfig()
		st := openStore(cfg)
		defer st.Close()
		engine := newEngine(cfg, st)

		paper := findPaper(st, args[0])
		if paper == nil {
			fmt.Fprintf(os.Stderr, "Error: no paper with id %s\n", args[0])
			os.Exit(1)
		}

		if !force {
			fmt.Printf("Delete %s? [y/N] ", ui.RenderTitle(paper.Title()))
			var answer string
			fmt.Scanln(&answer)
			if answer != "y" && answer != "Y" {
				fmt.Println("Aborted.")
				return
			}
		}

		if err := engine.DeletePaper(context.Background(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		engine.Wait()

		fmt.Printf("%s Deleted %s\n", ui.RenderPass("✓"), paper.Title())
	},
}

func init() {
	deleteCmd.Flags().BoolP("force", "f", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}
