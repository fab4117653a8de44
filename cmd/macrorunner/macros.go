package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/macrorunner/internal/app"
	"github.com/dshills/macrorunner/internal/macro"
)

func (c *cli) newCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Create a macro from the starter template",
		Long: `Create a macro from the starter template. With a name the template is
saved to the macros directory and its path printed; without one the
template is written to standard output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				source, _ := macro.Template()
				_, err := io.WriteString(c.out, source)
				return err
			}

			a, err := c.newApp(nil)
			if err != nil {
				return err
			}
			path, cursor, err := a.NewMacro(args[0], force)
			if err != nil {
				return err
			}

			source, err := a.LoadMacro(args[0])
			if err != nil {
				return err
			}
			line := strings.Count(source[:cursor], "\n") + 1
			fmt.Fprintf(c.out, "%s:%d\n", path, line)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing macro")
	return cmd
}

func (c *cli) saveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "save <name> <file>",
		Short: "Save a macro file under a name",
		Long:  `Validate a macro and copy it into the macros directory. Use "-" to read standard input.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(nil)
			if err != nil {
				return err
			}

			var path string
			if args[1] == "-" {
				data, err := io.ReadAll(c.in)
				if err != nil {
					return err
				}
				path, err = a.SaveMacro(args[0], string(data), force)
				if err != nil {
					return err
				}
			} else if path, err = a.ImportMacro(args[0], args[1], force); err != nil {
				return err
			}

			fmt.Fprintln(c.out, path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing macro")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a saved macro",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(nil)
			if err != nil {
				return err
			}
			source, err := a.LoadMacro(args[0])
			if err != nil {
				return err
			}
			_, err = io.WriteString(c.out, source)
			return err
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved macros",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(nil)
			if err != nil {
				return err
			}
			names, err := a.ListMacros()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintf(c.errOut, "no saved macros in %s\n", a.Store().Dir)
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(c.out, name)
			}
			return nil
		},
	}
}

func (c *cli) removeCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved macro",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(nil)
			if err != nil {
				return err
			}
			if !yes && !c.confirm(fmt.Sprintf("Remove macro %s?", macro.FileName(args[0]))) {
				return app.ErrAborted
			}
			return a.RemoveMacro(args[0])
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question on the CLI streams. Anything but y or yes
// is a no.
func (c *cli) confirm(question string) bool {
	fmt.Fprintf(c.errOut, "%s [y/N] ", question)

	answer, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (c *cli) dirCmd() *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "dir",
		Short: "Print the macros directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(nil)
			if err != nil {
				return err
			}
			dir := a.Store().Dir
			if create {
				if dir, err = a.Store().EnsureDir(); err != nil {
					return err
				}
			}
			fmt.Fprintln(c.out, dir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "create the directory if it is missing")
	return cmd
}
