package main

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"matchbook/domain"
	"matchbook/matching"
)

func main() {
	fmt.Println("=== 撮合引擎吞吐量测试 ===")

	exchange := matching.NewMultiBook("BTCUSDT")

	testDuration := 5 * time.Second
	numCPU := runtime.NumCPU()
	numWorkers := numCPU - 1 // one producer fewer than cores; matching runs inline under the book lock
	if numWorkers < 1 {
		numWorkers = 1
	}

	var orderCount atomic.Int64

	fmt.Printf("CPU 核心数: %d\n", numCPU)
	fmt.Printf("生产者数量: %d\n", numWorkers)
	fmt.Printf("测试时长: %v\n\n", testDuration)

	startTime := time.Now()
	stopChan := make(chan struct{})

	for w := 0; w < numWorkers; w++ {
		go func(workerID int) {
			orderID := 0
			for {
				select {
				case <-stopChan:
					return
				default:
					var side domain.Side
					if orderID%2 == 0 {
						side = domain.SideBuy
					} else {
						side = domain.SideSell
					}
					price := int64(50000 + orderID%200) // 价格重叠区间，保证持续成交

					if _, err := exchange.SubmitLimit("BTCUSDT", side, price, 1, fmt.Sprintf("worker-%d", workerID)); err == nil {
						orderCount.Add(1)
					}
					orderID++
				}
			}
		}(w)
	}

	ticker := time.NewTicker(1 * time.Second)
	go func() {
		for range ticker.C {
			elapsed := time.Since(startTime)
			orders := orderCount.Load()
			trades := int64(len(exchange.BookOf("BTCUSDT").Trades()))
			fmt.Printf("[%.0fs] 订单: %d (%.0f/s) | 成交: %d (%.0f/s)\n",
				elapsed.Seconds(), orders, float64(orders)/elapsed.Seconds(), trades, float64(trades)/elapsed.Seconds())
		}
	}()

	time.Sleep(testDuration)
	close(stopChan)
	ticker.Stop()

	elapsed := time.Since(startTime)
	totalOrders := orderCount.Load()
	totalTrades := int64(len(exchange.BookOf("BTCUSDT").Trades()))

	qps := float64(totalOrders) / elapsed.Seconds()
	tps := float64(totalTrades) / elapsed.Seconds()
	matchRate := float64(totalTrades) / float64(totalOrders) * 100

	fmt.Println("\n=== 性能测试结果 ===")
	fmt.Printf("测试时长:     %v\n", elapsed)
	fmt.Printf("总订单数:     %d\n", totalOrders)
	fmt.Printf("总成交数:     %d\n", totalTrades)
	fmt.Printf("订单吞吐量:   %.0f orders/sec\n", qps)
	fmt.Printf("成交吞吐量:   %.0f trades/sec\n", tps)
	fmt.Printf("撮合率:       %.2f%%\n", matchRate)

	snap := exchange.BookOf("BTCUSDT").Snapshot()
	fmt.Println("\n=== 订单簿状态 ===")
	if len(snap.Bids) > 0 {
		fmt.Printf("最佳买价:     %d\n", snap.Bids[0].Price)
	}
	if len(snap.Asks) > 0 {
		fmt.Printf("最佳卖价:     %d\n", snap.Asks[0].Price)
	}

	fmt.Println("\n买单深度 (前5档):")
	for i, level := range snap.Bids {
		if i >= 5 {
			break
		}
		fmt.Printf("  %d. 价格: %d, 数量: %d, 订单数: %d\n", i+1, level.Price, level.Quantity, len(level.OrderIDs))
	}
	fmt.Println("\n卖单深度 (前5档):")
	for i, level := range snap.Asks {
		if i >= 5 {
			break
		}
		fmt.Printf("  %d. 价格: %d, 数量: %d, 订单数: %d\n", i+1, level.Price, level.Quantity, len(level.OrderIDs))
	}
}
