package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaulttec/vault131/riddlepacks"
)

var riddlesCmd = &cobra.Command{
	Use:   "riddles",
	Short: "List the built-in riddle packs",
	Long: `Display the riddle packs compiled into vault131 and the riddles currently
in effect. Answers are never printed.`,
	RunE: runRiddles,
}

func init() {
	rootCmd.AddCommand(riddlesCmd)
}

func runRiddles(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	packs := make([]riddlepacks.Pack, 0, len(riddlepacks.Names()))
	for _, name := range riddlepacks.Names() {
		p, err := riddlepacks.Load(name)
		if err != nil {
			return fmt.Errorf("loading pack %s: %w", name, err)
		}
		packs = append(packs, p)
	}

	fmt.Fprintln(out, "Built-in Packs:")
	maxLen := maxNameLen(packs)
	for _, p := range packs {
		marker := " "
		if p.Name == cfg.RiddlePack && cfg.RiddlesFile == "" && len(cfg.Riddles) == 0 {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-*s  %d riddles  %s\n", marker, maxLen, p.Name, len(p.Riddles), p.Description)
	}

	fmt.Fprintln(out)

	riddles, err := cfg.ResolveRiddles()
	if err != nil {
		return fmt.Errorf("loading riddles: %w", err)
	}
	fmt.Fprintf(out, "Riddles In Effect (%s):\n", riddleSource())
	for i, r := range riddles {
		fmt.Fprintf(out, "  %d. %s\n", i+1, r.Prompt)
	}

	return nil
}

// riddleSource describes where the riddles in effect come from.
func riddleSource() string {
	switch {
	case cfg.RiddlesFile != "":
		return cfg.RiddlesFile
	case len(cfg.Riddles) > 0:
		return "inline config"
	default:
		return "pack " + cfg.RiddlePack
	}
}

// maxNameLen returns the length of the longest pack name in the slice.
func maxNameLen(packs []riddlepacks.Pack) int {
	maxLen := 0
	for _, p := range packs {
		if len(p.Name) > maxLen {
			maxLen = len(p.Name)
		}
	}
	return maxLen
}
