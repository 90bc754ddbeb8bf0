package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quodfinancial/venue-simulator/internal/events"
)

var replayCmd = &cobra.Command{
	Use:   "replay [event-log-path]",
	Short: "Replay a durable audit log, printing each event in sequence order",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	log, err := events.NewLog(events.Config{Path: args[0]})
	if err != nil {
		return err
	}
	defer log.Close()

	count := 0
	err = log.Replay(func(seqNum uint64, event interface{}) error {
		count++
		fmt.Printf("%d\t%T\t%+v\n", seqNum, event, event)
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("replayed %d events\n", count)
	return nil
}
