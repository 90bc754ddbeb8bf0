package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quodfinancial/venue-simulator/internal/config"
	"github.com/quodfinancial/venue-simulator/internal/instrument"
	"github.com/quodfinancial/venue-simulator/internal/orders"
	"github.com/quodfinancial/venue-simulator/internal/persistence"
	"github.com/quodfinancial/venue-simulator/internal/protocol"
	"github.com/quodfinancial/venue-simulator/internal/session"
	"github.com/quodfinancial/venue-simulator/internal/tradingsystem"
)

var (
	sendSymbol string
	sendSide   string
	sendQty    int64
	sendPrice  int64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Stand up an in-process venue, place one order against it, and print the reply",
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendSymbol, "symbol", "ACME", "instrument symbol to trade")
	sendCmd.Flags().StringVar(&sendSide, "side", "buy", "buy or sell")
	sendCmd.Flags().Int64Var(&sendQty, "qty", 10, "order quantity")
	sendCmd.Flags().Int64Var(&sendPrice, "price", 100, "limit price")
}

// runSend has no gateway to connect to — a real client would speak FIX to
// one — so it builds its own short-lived venue, submits the order against
// it directly through the same middleware channel a gateway binds to, and
// prints whatever reply comes back.
func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	facade, err := tradingsystem.New(cfg, demoInstruments(), persistence.GobSerializer{}, nil, zerolog.Nop(), nil)
	if err != nil {
		return err
	}
	if err := facade.Start(); err != nil {
		return err
	}
	defer facade.Terminate()

	channels := facade.Channels()

	done := make(chan string, 1)
	channels.TradingReply.OrderPlacementConfirmation.Bind(func(c protocol.OrderPlacementConfirmation) {
		done <- fmt.Sprintf("confirmed: order=%d clOrdID=%s status=%s", c.OrderID, c.ClientOrderID, c.Status)
	})
	channels.TradingReply.OrderPlacementReject.Bind(func(r protocol.OrderPlacementReject) {
		done <- fmt.Sprintf("rejected: clOrdID=%s reason=%s", r.ClientOrderID, r.Reason)
	})

	side := orders.SideBuy
	if sendSide == "sell" {
		side = orders.SideSell
	}

	channels.TradingRequest.Placement.Emit(protocol.OrderPlacementRequest{
		Session:       session.NewFix(uuid.New()),
		ClientOrderID: fmt.Sprintf("venuesim-%d", time.Now().UnixNano()),
		Instrument:    instrument.Descriptor{Symbol: &sendSymbol},
		Side:          side,
		Type:          orders.TypeLimit,
		TIF:           orders.TIFDay,
		Quantity:      sendQty,
		Price:         sendPrice,
	})

	select {
	case result := <-done:
		fmt.Println(result)
	case <-time.After(2 * time.Second):
		fmt.Println("timed out waiting for a reply")
	}
	return nil
}
