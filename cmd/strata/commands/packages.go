package commands

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"go.trai.ch/strata/internal/app"
	"go.trai.ch/strata/internal/ui/style"
)

func (c *CLI) newPackagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "packages",
		Aliases: []string{"ls"},
		Short:   "List the discovered packages in dependency order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.app.Packages(cmd.Context(), options(cmd))
			if err != nil {
				return err
			}
			printPackages(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func printPackages(w io.Writer, s *app.Session) {
	_, _ = fmt.Fprintln(w, style.Title.Render(fmt.Sprintf("%d packages", s.Registry.Len())))
	for pkg := range s.Registry.Walk() {
		line := style.Dot + " " + style.Name.Render(pkg.Name)
		if v := pkg.Version(); v != "" {
			line += " " + style.Version.Render(v)
		}
		if slices.Contains(s.Configured, pkg.Name) {
			line += " " + style.Badge.Render("configured")
		}
		line += " " + style.Path.Render(pkg.Path)
		_, _ = fmt.Fprintln(w, line)
	}
}
