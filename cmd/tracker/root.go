package main

import (
	"github.com/spf13/cobra"
)

var confPath string

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Team athlete achievement tracker",
	Long: `Tracker runs the services of the athlete achievement tracker and a few
offline helpers.

SERVICES:

  $ tracker teams   --config configs/teams.env     # teams, members, join codes
  $ tracker tasks   --config configs/tasks.env     # tasks, proofs, progress
  $ tracker gateway --config configs/gateway.env   # sessions, leaderboards, badges

HELPERS:

  $ tracker code "Warriors" 3f2a9c1e-...           # print a team code
  $ tracker badges 7 320                           # badges for 7 achievements, 320 points
  $ tracker badges 7 320 --ladder ladder.yaml      # same, with a custom ladder`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&confPath, "config", "c", ".env", "path to the .env file")
}
