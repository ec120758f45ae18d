package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/strata/internal/app"
)

func (c *CLI) newCompileLessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile-less",
		Short: "Compile the package stylesheets into one CSS file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.app.Prepare(cmd.Context(), options(cmd))
			if err != nil {
				return err
			}
			_, err = c.app.CompileLess(cmd.Context(), s)
			return err
		},
	}
}

func (c *CLI) newOptimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Build the minified stylesheet and the JavaScript bundle",
		Long:  "Build the minified stylesheet and the JavaScript bundle. Both are built unless --css or --js selects one.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			css, _ := cmd.Flags().GetBool("css")
			js, _ := cmd.Flags().GetBool("js")
			return c.app.Optimize(cmd.Context(), options(cmd), app.OptimizeOptions{CSS: css, JS: js})
		},
	}
	cmd.Flags().Bool("css", false, "Only build the stylesheet")
	cmd.Flags().Bool("js", false, "Only build the JavaScript bundle")
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Build all artifacts and rebuild them when files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Watch(cmd.Context(), options(cmd))
		},
	}
}

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the package directories and generated artifacts over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			return c.app.Serve(cmd.Context(), options(cmd), addr)
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:8080", "Address to listen on")
	return cmd
}
