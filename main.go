package main

import (
	"fmt"
	"time"

	"matchbook/domain"
	"matchbook/feed"
	"matchbook/idgen"
	"matchbook/matching"
)

func main() {
	exchange := matching.NewMultiBook("BTCUSDT")
	fmt.Println("Exchange registry started")
	fmt.Printf("BTCUSDT book initialized: %v\n", exchange.BookOf("BTCUSDT") != nil)

	trades := feed.New[domain.Trade](1024)
	exchange.BookOf("BTCUSDT").SetTradeFeed(trades)

	go func() {
		consumer := trades.NewConsumer()
		for {
			trade := consumer.Consume()
			fmt.Printf("Trade executed: %s %d@%d buyer=%d seller=%d\n",
				trade.Symbol, trade.Quantity, trade.Price, trade.AggressorID, trade.RestingID)
		}
	}()

	go func() {
		time.Sleep(100 * time.Millisecond)

		if _, err := exchange.SubmitLimit("BTCUSDT", domain.SideSell, 50000, 100000000, idgen.NewTraderID()); err != nil {
			fmt.Println("submit failed:", err)
			return
		}
		fmt.Println("Submitted sell order: 1 BTC @ 50000 USDT")

		if _, err := exchange.SubmitLimit("BTCUSDT", domain.SideBuy, 50000, 50000000, idgen.NewTraderID()); err != nil {
			fmt.Println("submit failed:", err)
			return
		}
		fmt.Println("Submitted buy order: 0.5 BTC @ 50000 USDT")
	}()

	select {}
}
