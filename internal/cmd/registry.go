package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/docscheck/internal/registry"
)

// registryDump is the JSON form of the registry command output.
type registryDump struct {
	Root          string                 `json:"root"`
	Formats       []string               `json:"formats"`
	Paths         map[string]string      `json:"paths"`
	Expected      map[string]interface{} `json:"expected"`
	RequiredFiles map[string][]string    `json:"required_files"`
}

// NewRegistryCommand creates the registry command
func NewRegistryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Show resolved paths and expected values",
		Long: `Show what the checks will look for: the project root, the builder
formats, every registered path, expected configuration value and required
file, after config file, environment and flags are applied.`,
		Args: cobra.NoArgs,
		RunE: runRegistry,
	}

	cmd.Flags().Bool("json", false, "Print as JSON")

	return cmd
}

func runRegistry(cmd *cobra.Command, args []string) error {
	reg, _, err := loadProject(cmd)
	if err != nil {
		return err
	}

	dump, err := dumpRegistry(reg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(dump)
	}

	fmt.Fprintf(out, "Root: %s\n", dump.Root)
	fmt.Fprintf(out, "Formats: %s\n", strings.Join(dump.Formats, ", "))

	fmt.Fprintf(out, "\nPaths:\n")
	for _, name := range reg.Names() {
		fmt.Fprintf(out, "  %-14s %s\n", name, dump.Paths[name])
	}

	fmt.Fprintf(out, "\nExpected values:\n")
	for _, key := range reg.Keys() {
		v, _ := reg.ExpectedValue(key)
		if v.IsList() {
			fmt.Fprintf(out, "  %s: [%s]\n", key, strings.Join(v.Strings(), ", "))
			continue
		}
		fmt.Fprintf(out, "  %s: %s\n", key, v.String())
	}

	fmt.Fprintf(out, "\nRequired files:\n")
	for _, category := range reg.Categories() {
		fmt.Fprintf(out, "  %s: %s\n", category, strings.Join(reg.RequiredFiles(category), ", "))
	}
	return nil
}

func dumpRegistry(reg *registry.Registry) (*registryDump, error) {
	dump := &registryDump{
		Root:          reg.RootPath(),
		Formats:       reg.Formats(),
		Paths:         make(map[string]string),
		Expected:      make(map[string]interface{}),
		RequiredFiles: make(map[string][]string),
	}
	for _, name := range reg.Names() {
		p, err := reg.PathFor(name)
		if err != nil {
			return nil, err
		}
		dump.Paths[name] = p
	}
	for _, key := range reg.Keys() {
		v, err := reg.ExpectedValue(key)
		if err != nil {
			return nil, err
		}
		if v.IsList() {
			dump.Expected[key] = v.Strings()
		} else {
			dump.Expected[key] = v.String()
		}
	}
	for _, category := range reg.Categories() {
		dump.RequiredFiles[category] = reg.RequiredFiles(category)
	}
	return dump, nil
}
