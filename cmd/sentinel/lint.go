package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sentinel-hq/sentinel/pkg/policy"
)

var lintFlags struct {
	file string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate a policy file",
	Long: `Validate a YAML policy file before deploying it.

The lint command parses the file and checks every policy:
  - YAML syntax
  - Required fields (id, name) and unique IDs
  - Severity values
  - Recognized condition types (unknown types are reported as warnings)

Examples:
  # Lint a policy file
  sentinel lint --file policies.yaml`,
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "policy file to validate")
	_ = lintCmd.MarkFlagRequired("file")
}

func runLint(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(lintFlags.file)
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", lintFlags.file, err)
	}

	var doc struct {
		Policies []*policy.Policy `yaml:"policies"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse %q: %w", lintFlags.file, err)
	}
	if len(doc.Policies) == 0 {
		return fmt.Errorf("%s: no policies found", lintFlags.file)
	}

	var (
		failures int
		warnings int
		seen     = make(map[string]bool)
	)
	for i, p := range doc.Policies {
		label := p.ID
		if label == "" {
			label = fmt.Sprintf("policy #%d", i+1)
		}

		if err := policy.Validate(p); err != nil {
			fmt.Printf("FAIL  %s: %v\n", label, err)
			failures++
			continue
		}
		if seen[p.ID] {
			fmt.Printf("FAIL  %s: duplicate policy ID\n", label)
			failures++
			continue
		}
		seen[p.ID] = true

		for _, t := range policy.UnrecognizedConditions(p) {
			fmt.Printf("WARN  %s: unrecognized condition type %q will be skipped\n", label, t)
			warnings++
		}
		fmt.Printf("OK    %s\n", label)
	}

	fmt.Printf("\n%d policies, %d failures, %d warnings\n", len(doc.Policies), failures, warnings)
	if failures > 0 {
		return fmt.Errorf("validation failed")
	}
	return nil
}
