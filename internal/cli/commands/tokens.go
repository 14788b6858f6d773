package commands

import (
	"fmt"

	"github.com/leapstack-labs/horizon/internal/cli/output"
	"github.com/leapstack-labs/horizon/internal/theme"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Token output formats.
const (
	TokensCSS  = "css"
	TokensYAML = "yaml"
	TokensJSON = "json"
)

type tokensOutput struct {
	Tokens theme.TokenBag `json:"tokens" yaml:"tokens"`
	Vars   []theme.Var    `json:"vars" yaml:"vars"`
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "tokens <manifest>",
		Short: "Print the CSS variables a brand manifest yields",
		Long: `Read a brand manifest (JSON or YAML) and print the CSS custom
properties the viewer would inject. Tokens the manifest lacks or that are
malformed are left out.`,
		Example: `  # CSS declarations
  horizon tokens brand.json

  # Adapted tokens and variables as YAML
  horizon tokens brand.yaml --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokens(cmd, args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (css|yaml|json)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{TokensCSS, TokensYAML, TokensJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runTokens(cmd *cobra.Command, path, format string) error {
	r := NewCommandContext(cmd).Renderer

	m, err := theme.LoadFile(path)
	if err != nil {
		return err
	}
	bag := m.Adapt()
	out := tokensOutput{Tokens: bag, Vars: theme.Vars(bag)}

	if format == "" {
		format = TokensCSS
		if r.EffectiveMode() == output.ModeJSON {
			format = TokensJSON
		}
	}

	switch format {
	case TokensJSON:
		return r.JSON(out)
	case TokensYAML:
		enc := yaml.NewEncoder(r.Writer())
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case TokensCSS:
		if len(out.Vars) == 0 {
			r.Warning("manifest yields no variables")
			return nil
		}
		r.Println(":root {")
		for _, v := range out.Vars {
			r.Printf("  %s: %s;\n", v.Name, v.Value)
		}
		r.Println("}")
		return nil
	}
	return fmt.Errorf("unknown format %q (want css, yaml or json)", format)
}
