package main

import (
	"github.com/spf13/cobra"

	"kyri56xcaesar/athlete-tracker/internal/front"
	"kyri56xcaesar/athlete-tracker/internal/mtask"
	"kyri56xcaesar/athlete-tracker/internal/mteam"
)

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "Run the team service",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		mteam.InitAndServe(confPath)
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Run the task service",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		mtask.InitAndServe(confPath)
	},
}

var gatewayCmd = &cobra.Command{
	Use:     "gateway",
	Aliases: []string{"front"},
	Short:   "Run the gateway",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		front.InitAndServe(confPath)
	},
}

func init() {
	rootCmd.AddCommand(teamsCmd, tasksCmd, gatewayCmd)
}
