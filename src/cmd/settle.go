package cmd

import (
	"github.com/onton-events/settler/src/settle"
	"github.com/onton-events/settler/src/utils/logger"

	"github.com/spf13/cobra"
)

var jobFamilies []string

func init() {
	settleCmd.Flags().StringSliceVar(&jobFamilies, "jobs", settle.AllFamilies,
		"job families to run (clicks, orders, campaign, collections, items, notifier, balances, rewardsync)")
	RootCmd.AddCommand(settleCmd)
}

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Runs the settlement jobs on their schedules",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := settle.NewController(conf, jobFamilies)
		if err != nil {
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}

		select {
		case <-controller.CtxRunning.Done():
		case <-applicationCtx.Done():
		}

		controller.StopWait()

		return
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("root-cmd")
		log.Debug("Finished settle command")
		applicationCtxCancel()
		return
	},
}
