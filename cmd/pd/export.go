package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/internal/export"
	"github.com/paperdesk/paperdesk/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:     "export <file>",
	GroupID: "sync",
	Short:   "Export papers to a file",
	Long: `Export the collection (or a single paper) to a portable file.

Formats:
  jsonl  one paper per line, suitable for backup and re-import
  json   a JSON array of papers
  yaml   human-readable YAML

Examples:
  pd export backup.jsonl
  pd export --format yaml papers.yaml
  pd export --id 42 paper.json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		formatFlag, _ := cmd.Flags().GetString("format")
		id, _ := cmd.Flags().GetString("id")
		backup, _ := cmd.Flags().GetBool("backup")

		cfg := loadConfig()
		st := openStore(cfg)
		defer st.Close()

		if id != "" {
			paper := findPaper(st, id)
			if paper == nil {
				fmt.Fprintf(os.Stderr, "Error: no paper with id %s\n", id)
				os.Exit(1)
			}
			if err := export.ExportPaper(paper, args[0]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("%s Exported %s to %s\n", ui.RenderPass("✓"), paper.Title(), args[0])
			return
		}

		format, err := export.ParseFormat(formatFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		papers, err := st.LoadAll()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		res, err := export.Export(papers, export.Options{
			Path:   args[0],
			Format: format,
			Backup: backup,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Exported %d papers to %s\n", ui.RenderPass("✓"), res.PapersWritten, args[0])
		if res.BackupCreated != "" {
			fmt.Printf("   Previous file kept at %s\n", ui.RenderDim(res.BackupCreated))
		}
	},
}

func init() {
	exportCmd.Flags().String("format", "jsonl", "Output format (json, jsonl, yaml)")
	exportCmd.Flags().String("id", "", "Export a single paper as JSON")
	exportCmd.Flags().Bool("backup", false, "Keep a timestamped copy of an existing output file")

	rootCmd.AddCommand(exportCmd)
}
