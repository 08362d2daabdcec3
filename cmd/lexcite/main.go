package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/coolbeans/lexcite/pkg/annotate"
	"github.com/coolbeans/lexcite/pkg/citation"
	"github.com/coolbeans/lexcite/pkg/cleaner"
	"github.com/coolbeans/lexcite/pkg/pattern"
	"github.com/coolbeans/lexcite/pkg/pipeline"
	"github.com/coolbeans/lexcite/pkg/reporters"
	"github.com/coolbeans/lexcite/pkg/resolve"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "lexcite",
		Short: "Legal citation extraction toolkit",
		Long: `Lexcite finds legal citations in unstructured text.

It cleans source documents while tracking every offset shift, matches
cases, statutes, regulations, and journal articles against a pattern
library, links parallel citations, scores confidence against a
reporter database, and resolves id., supra, and short-form references
back to their antecedents.

Output carries spans in both cleaned and original coordinates, so
results map straight back onto the source document.`,
		Version: version,
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(annotateCmd())
	rootCmd.AddCommand(patternsCmd())
	rootCmd.AddCommand(cleanersCmd())
	rootCmd.AddCommand(reportersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readInput loads the document from the path argument, or from stdin
// when no argument (or "-") is given.
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read source: %w", err)
	}
	return string(data), nil
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "Pipeline configuration file (YAML)")
	cmd.Flags().StringSlice("cleaners", []string{}, "Cleaning steps to apply (default: html, unicode, underscores, inline_whitespace)")
	cmd.Flags().String("patterns-dir", "", "Directory of pattern overlay files (YAML)")
	cmd.Flags().String("reporters", "", "Reporter database file (default: embedded dataset)")
	cmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")
}

// pipelineOptions materializes pipeline options from the shared flags,
// starting from --config when given. Flags override file settings.
func pipelineOptions(cmd *cobra.Command) (pipeline.Options, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	logger := zap.NewNop()
	if verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			return pipeline.Options{}, fmt.Errorf("failed to build logger: %w", err)
		}
		logger = dev
	}

	cfg := &pipeline.Config{}
	if configPath != "" {
		loaded, err := pipeline.LoadConfig(configPath)
		if err != nil {
			return pipeline.Options{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if names, _ := cmd.Flags().GetStringSlice("cleaners"); len(names) > 0 {
		cfg.Cleaners = names
	}
	if dir, _ := cmd.Flags().GetString("patterns-dir"); dir != "" {
		cfg.PatternDir = dir
	}
	if file, _ := cmd.Flags().GetString("reporters"); file != "" {
		cfg.ReportersFile = file
	}

	return cfg.Options(logger)
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Extract citations from a document",
		Long: `Extract legal citations from a file or stdin.

The document is cleaned, matched against the pattern library, linked,
scored, and resolved. Output is JSON unless --text is given.

Example:
  lexcite extract brief.txt
  cat brief.txt | lexcite extract --text
  lexcite extract brief.txt --scope none --report`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asText, _ := cmd.Flags().GetBool("text")
			output, _ := cmd.Flags().GetString("out")
			showReport, _ := cmd.Flags().GetBool("report")
			noResolve, _ := cmd.Flags().GetBool("no-resolve")
			scope, _ := cmd.Flags().GetString("scope")

			text, err := readInput(args)
			if err != nil {
				return err
			}

			opts, err := pipelineOptions(cmd)
			if err != nil {
				return err
			}

			// Resolution runs by default; --no-resolve switches it off.
			if noResolve {
				opts.Resolution = nil
			} else {
				if opts.Resolution == nil {
					opts.Resolution = &resolve.Options{}
				}
				if scope != "" {
					opts.Resolution.Scope = resolve.ScopeStrategy(scope)
				}
				if showReport {
					opts.Resolution.ReportUnresolved = true
				}
			}

			p, err := pipeline.New(opts)
			if err != nil {
				return err
			}
			result, err := p.Run(text)
			if err != nil {
				return err
			}

			if asText {
				printTextResult(result, showReport)
				return nil
			}

			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to serialize result: %w", err)
			}
			if output != "" {
				if err := os.WriteFile(output, data, 0644); err != nil {
					return fmt.Errorf("failed to write file: %w", err)
				}
				fmt.Printf("Result written to: %s\n", output)
				fmt.Printf("  Citations: %d\n", len(result.Citations))
				return nil
			}
			fmt.Println(string(data))
			return nil
		},
	}

	addPipelineFlags(cmd)
	cmd.Flags().Bool("text", false, "Human-readable output instead of JSON")
	cmd.Flags().StringP("out", "o", "", "Write output to a file")
	cmd.Flags().Bool("report", false, "Include the short-form resolution report with unresolved entries")
	cmd.Flags().Bool("no-resolve", false, "Skip short-form resolution")
	cmd.Flags().String("scope", "", "Resolution scope (paragraph, section, footnote, none)")
	return cmd
}

func printTextResult(result *pipeline.Result, showReport bool) {
	fmt.Printf("Citations found: %d\n", len(result.Citations))
	for i, rc := range result.Citations {
		cit := rc.Citation
		fmt.Printf("\n[%d] %s\n", i, cit.MatchedText)
		fmt.Printf("    Type:       %s\n", cit.Type)
		fmt.Printf("    Span:       %d-%d (original %d-%d)\n",
			cit.Span.CleanStart, cit.Span.CleanEnd,
			cit.Span.OriginalStart, cit.Span.OriginalEnd)
		fmt.Printf("    Confidence: %.2f\n", cit.Confidence)
		if cit.Case != nil && cit.Case.CaseName != "" {
			fmt.Printf("    Case:       %s\n", cit.Case.CaseName)
		}
		if cit.Case != nil && cit.Case.GroupID != "" {
			fmt.Printf("    Group:      %s\n", cit.Case.GroupID)
		}
		if rc.Resolution != nil {
			if rc.Resolution.Status == resolve.StatusResolved {
				fmt.Printf("    Resolved:   [%d] (%.2f)\n",
					rc.Resolution.Index, rc.Resolution.Confidence)
			} else {
				fmt.Printf("    Resolved:   failed (%s)\n", rc.Resolution.Reason)
			}
		}
		for _, w := range cit.Warnings {
			fmt.Printf("    Warning:    %s\n", w)
		}
	}
	if len(result.Skipped) > 0 {
		fmt.Printf("\nSkipped tokens: %d\n", len(result.Skipped))
		for _, s := range result.Skipped {
			fmt.Printf("  - %q (%s)\n", s.Token.Text, s.Token.PatternID)
		}
	}
	if showReport && result.Report != nil {
		fmt.Println()
		fmt.Print(result.Report.String())
	}
}

func annotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate [file|-]",
		Short: "Wrap citations in a document with markup",
		Long: `Find citations in a file or stdin and wrap each one with the
--before and --after strings, splicing in original coordinates so the
rest of the document is untouched.

Example:
  lexcite annotate brief.txt --before '<cite>' --after '</cite>'
  cat brief.html | lexcite annotate --before '<mark>' --after '</mark>' --out marked.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, _ := cmd.Flags().GetString("before")
			after, _ := cmd.Flags().GetString("after")
			output, _ := cmd.Flags().GetString("out")

			text, err := readInput(args)
			if err != nil {
				return err
			}

			opts, err := pipelineOptions(cmd)
			if err != nil {
				return err
			}
			opts.Resolution = nil

			p, err := pipeline.New(opts)
			if err != nil {
				return err
			}
			result, err := p.Run(text)
			if err != nil {
				return err
			}

			citations := make([]*citation.Citation, 0, len(result.Citations))
			for _, rc := range result.Citations {
				citations = append(citations, rc.Citation)
			}
			annotations := annotate.ForCitations(citations, func(*citation.Citation) (string, string) {
				return before, after
			})
			annotated := annotate.New(text).Apply(annotations)

			if output != "" {
				if err := os.WriteFile(output, []byte(annotated), 0644); err != nil {
					return fmt.Errorf("failed to write file: %w", err)
				}
				fmt.Printf("Annotated %d citations to: %s\n", len(annotations), output)
				return nil
			}
			fmt.Print(annotated)
			return nil
		},
	}

	addPipelineFlags(cmd)
	cmd.Flags().String("before", "<cite>", "Markup inserted before each citation")
	cmd.Flags().String("after", "</cite>", "Markup inserted after each citation")
	cmd.Flags().StringP("out", "o", "", "Write annotated text to a file")
	return cmd
}

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List registered citation patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("patterns-dir")
			asJSON, _ := cmd.Flags().GetBool("json")

			lib := pattern.Default()
			if dir != "" {
				if err := lib.LoadDirectory(dir); err != nil {
					return fmt.Errorf("failed to load patterns: %w", err)
				}
			}

			if asJSON {
				data, err := json.MarshalIndent(lib.Patterns(), "", "  ")
				if err != nil {
					return fmt.Errorf("failed to serialize patterns: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("Patterns: %d\n\n", lib.Count())
			for _, p := range lib.Patterns() {
				fmt.Printf("  %-18s %-12s %s\n", p.ID, p.Type, p.Expr)
			}
			return nil
		},
	}

	cmd.Flags().String("patterns-dir", "", "Directory of pattern overlay files (YAML)")
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func cleanersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleaners",
		Short: "List available cleaning steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			applied := make(map[string]bool)
			for _, step := range cleaner.DefaultSteps() {
				applied[step.Name] = true
			}

			fmt.Println("Cleaning steps:")
			for _, name := range cleaner.Names() {
				marker := " "
				if applied[name] {
					marker = "*"
				}
				fmt.Printf("  %s %s\n", marker, name)
			}
			fmt.Println("\n* applied by default")
			return nil
		},
	}
}

func reportersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reporters",
		Short: "Summarize the reporter database",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			lookup, _ := cmd.Flags().GetString("lookup")

			var db *reporters.DB
			var err error
			if file != "" {
				db, err = reporters.LoadFile(file)
			} else {
				db, err = reporters.Default()
			}
			if err != nil {
				return fmt.Errorf("failed to load reporters: %w", err)
			}

			if lookup != "" {
				entries := db.Lookup(lookup)
				if len(entries) == 0 {
					fmt.Printf("No series matches %q\n", lookup)
					return nil
				}
				for _, e := range entries {
					fmt.Printf("  %-14s %s (%s)\n", e.Abbreviation, e.Name, e.CiteType)
				}
				return nil
			}

			byType := make(map[string]int)
			variations := 0
			for _, e := range db.Entries() {
				byType[e.CiteType]++
				variations += len(e.Variations)
			}

			fmt.Println("Reporter database:")
			fmt.Printf("  Series:     %d\n", db.Len())
			fmt.Printf("  Variations: %d\n", variations)
			fmt.Println("\nBy type:")
			for _, citeType := range []string{"federal", "state_regional", "state", "specialty", "english"} {
				if n := byType[citeType]; n > 0 {
					fmt.Printf("  %-16s %d\n", citeType, n)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "Reporter database file (default: embedded dataset)")
	cmd.Flags().String("lookup", "", "Look up one abbreviation")
	return cmd
}
