package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pixeldrift/pixeldrift/pkg/cursor"
)

// newCursorCmd creates the cursor management command.
//
// The cursor is the resume position of a halted run. Position 0 means the
// last run finished clean and the next one starts from the top.
func newCursorCmd() *cobra.Command {
	var workDir string

	cmd := &cobra.Command{
		Use:   "cursor",
		Short: "Manage the resume position",
	}
	cmd.PersistentFlags().StringVarP(&workDir, "work-dir", "w", defaultWorkDir, "work directory holding the cursor file")

	cmd.AddCommand(newCursorShowCmd(&workDir))
	cmd.AddCommand(newCursorResetCmd(&workDir))

	return cmd
}

// newCursorShowCmd creates the "cursor show" subcommand.
func newCursorShowCmd(workDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resume position",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := cursor.NewFile(*workDir)
			pos, err := store.Load()
			if err != nil {
				return err
			}
			if pos == 0 {
				printInfo("No pending halt; the next run starts from the top")
				return nil
			}
			printInfo("Next run resumes at entry %s", StyleHighlight.Render(strconv.Itoa(pos)))
			printDetail("Cursor file: %s", store.Path())
			return nil
		},
	}
}

// newCursorResetCmd creates the "cursor reset" subcommand.
func newCursorResetCmd(workDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the resume position so the next run starts from the top",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := cursor.NewFile(*workDir)
			if err := store.Save(0); err != nil {
				return err
			}
			printSuccess("Cursor reset")
			printDetail("Cursor file: %s", store.Path())
			return nil
		},
	}
}
