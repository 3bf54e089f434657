package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"kyri56xcaesar/athlete-tracker/internal/badges"
	"kyri56xcaesar/athlete-tracker/internal/teamcode"
)

var ladderPath string

var codeCmd = &cobra.Command{
	Use:   "code <team-name> <team-id>",
	Short: "Print the join code of a team",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		code := teamcode.Encode(args[0], args[1])
		if code == "" {
			return fmt.Errorf("team name and id are empty")
		}
		fmt.Fprintln(cmd.OutOrStdout(), code)

		return nil
	},
}

var badgesCmd = &cobra.Command{
	Use:   "badges <achievements> <points>",
	Short: "Show the badges earned with the given totals",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := strconv.Atoi(args[0])
		if err != nil || count < 0 {
			return fmt.Errorf("achievements must be a non-negative integer: %q", args[0])
		}
		points, err := strconv.Atoi(args[1])
		if err != nil || points < 0 {
			return fmt.Errorf("points must be a non-negative integer: %q", args[1])
		}

		ladder := badges.DefaultLadder
		if ladderPath != "" {
			if ladder, err = badges.LoadLadder(ladderPath); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		earned := ladder.Evaluate(count, points)
		if len(earned) == 0 {
			color.New(color.Faint).Fprintln(out, "no badges yet")
			return nil
		}

		name := color.New(color.FgCyan, color.Bold)
		for _, b := range earned {
			fmt.Fprintf(out, "%s  ", b.Icon)
			name.Fprint(out, b.Name)
			fmt.Fprintf(out, "  %s\n", b.Description)
		}

		return nil
	},
}

func init() {
	badgesCmd.Flags().StringVarP(&ladderPath, "ladder", "l", "", "yaml badge ladder")
	rootCmd.AddCommand(codeCmd, badgesCmd)
}
