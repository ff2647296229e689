package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/internal/ui"
)

var duplicateCmd = &cobra.Command{
	Use:     "duplicate <id>",
	GroupID: "paper",
	Short:   "Duplicate a paper",
	Long: `Create an independent copy of a paper.

The copy gets fresh ids throughout, so edits to it never leak into the
original. If the source paper lives on the server, the server makes its
own copy and the local one adopts its id.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		st := openStore(cfg)
		defer st.Close()
		engine := newEngine(cfg, st)

		dup, err := engine.DuplicatePaper(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		engine.Wait()

		fmt.Printf("%s Duplicated %s\n", ui.RenderPass("✓"), ui.RenderTitle(dup.Title()))
		fmt.Printf("   New ID: %s\n", ui.RenderDim(dup.ID.Value))
	},
}

func init() {
	rootCmd.AddCommand(duplicateCmd)
}
