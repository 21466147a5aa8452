package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mvp-joe/doctree/internal/brief"
	"github.com/spf13/cobra"
)

var (
	briefDepth int
	briefJSON  bool
)

// briefCmd represents the brief command
var briefCmd = &cobra.Command{
	Use:   "brief <file>",
	Short: "Print the @brief summary of a single file",
	Long: `Brief prints the text of the first @brief comment found within the leading
lines of file. It exits non-zero when the file has no brief or cannot be read.

Examples:
  doctree brief main.go
  doctree brief README.md --depth 50 --json
`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeBrief(cmd.OutOrStdout(), args[0], briefDepth, briefJSON)
	},
}

func init() {
	rootCmd.AddCommand(briefCmd)
	briefCmd.Flags().IntVarP(&briefDepth, "depth", "d", brief.DefaultSearchDepth, "Leading lines to scan")
	briefCmd.Flags().BoolVar(&briefJSON, "json", false, "Print the brief with its dialect and line as JSON")
}

func executeBrief(w io.Writer, path string, depth int, asJSON bool) error {
	if depth < 1 {
		return fmt.Errorf("--depth must be at least 1, got %d", depth)
	}

	b, err := brief.Extract(path, depth)
	if err != nil {
		return err
	}

	if !asJSON {
		_, err = fmt.Fprintln(w, b.Text)
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Path string `json:"path"`
		brief.Brief
	}{Path: path, Brief: b})
}
