package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sync/atomic"
	"time"

	"matchbook/domain"
	"matchbook/matching"
)

func main() {
	cpuFile, err := os.Create("cpu.prof")
	if err != nil {
		panic(err)
	}
	defer cpuFile.Close()

	pprof.StartCPUProfile(cpuFile)
	defer pprof.StopCPUProfile()

	fmt.Println("=== 性能分析开始 ===")
	fmt.Println("生成 CPU profile: cpu.prof")

	exchange := matching.NewMultiBook("BTCUSDT")

	duration := 10 * time.Second
	numCPU := runtime.NumCPU()
	numWorkers := numCPU - 1
	if numWorkers < 1 {
		numWorkers = 1
	}

	var orderCount atomic.Int64

	fmt.Printf("CPU 核心数: %d\n", numCPU)
	fmt.Printf("生产者数量: %d\n", numWorkers)
	fmt.Printf("测试时长: %v\n\n", duration)

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
					price := int64(50000 + orderID%200)

					if _, err := exchange.SubmitLimit("BTCUSDT", side, price, 1, fmt.Sprintf("worker-%d", workerID)); err == nil {
						orderCount.Add(1)
					}
					orderID++
				}
			}
		}(w)
	}

	time.Sleep(duration)
	close(stopChan)

	elapsed := time.Since(startTime)
	totalOrders := orderCount.Load()
	totalTrades := int64(len(exchange.BookOf("BTCUSDT").Trades()))

	fmt.Println("\n=== 性能测试结果 ===")
	fmt.Printf("总订单数: %d\n", totalOrders)
	fmt.Printf("总成交数: %d\n", totalTrades)
	fmt.Printf("Order QPS: %.0f orders/sec\n", float64(totalOrders)/elapsed.Seconds())
	fmt.Printf("Trade TPS: %.0f trades/sec\n", float64(totalTrades)/elapsed.Seconds())

	fmt.Println("\n分析 CPU profile:")
	fmt.Println("  go tool pprof -http=:8080 cpu.prof")
	fmt.Println("  或者: go tool pprof cpu.prof")
	fmt.Println("  然后输入: top10  (查看前 10 个热点函数)")
	fmt.Println("  然后输入: list <函数名>  (查看具体代码)")
}
