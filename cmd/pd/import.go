package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/internal/export"
	"github.com/paperdesk/paperdesk/internal/sync"
	"github.com/paperdesk/paperdesk/internal/ui"
)

var importCmd = &cobra.Command{
	Use:     "import <file>",
	GroupID: "sync",
	Short:   "Import papers from a file",
	Long: `Import papers from a JSON document or a JSONL collection file.

Every imported paper enters under a fresh id, so importing the same
file twice yields two independent copies. A malformed file is rejected
as a whole; nothing is applied partially.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		st := openStore(cfg)
		defer st.Close()
		engine := newEngine(cfg, st)

		if strings.HasSuffix(args[0], ".jsonl") {
			importCollection(engine, args[0])
			return
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		out := engine.ImportPaper(context.Background(), raw)
		reportImport(out)
	},
}

// importCollection imports a JSONL file paper by paper. The file is
// fully parsed and validated first, so a bad line rejects everything.
func importCollection(engine sync.Engine, path string) {
	papers, err := export.ReadJSONL(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	imported, localOnly := 0, 0
	for _, p := range papers {
		raw, err := json.Marshal(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		switch out := engine.ImportPaper(context.Background(), raw); out.Kind {
		case sync.OutcomeImportError:
			fmt.Fprintf(os.Stderr, "Error: %v\n", out.Err)
			os.Exit(1)
		case sync.OutcomeLocalOnly:
			localOnly++
			imported++
		default:
			imported++
		}
	}

	fmt.Printf("%s Imported %d papers\n", ui.RenderPass("✓"), imported)
	if localOnly > 0 {
		fmt.Printf("%s %d papers not yet pushed (server unreachable); run 'pd sync' later\n",
			ui.RenderWarn("⚠"), localOnly)
	}
}

func reportImport(out sync.Outcome) {
	switch out.Kind {
	case sync.OutcomeImportError:
		fmt.Fprintf(os.Stderr, "Error: %v\n", out.Err)
		os.Exit(1)
	case sync.OutcomeLocalOnly:
		fmt.Printf("%s Imported as %s (not yet pushed; run 'pd sync' later)\n",
			ui.RenderWarn("⚠"), out.PaperID.Value)
	default:
		fmt.Printf("%s Imported as %s\n", ui.RenderPass("✓"), out.PaperID.Value)
	}
}

func init() {
	rootCmd.AddCommand(importCmd)
}
