package main

import (
	"flag"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Usage example on the command line:
// > go run main.go -url=http://localhost:8080/people -timeout=2m
func main() {
	urlPtr := flag.String("url", "http://localhost:8080/people", "the page that has to answer with 200")
	intervalPtr := flag.Duration("interval", 5*time.Second, "the time between two attempts")
	timeoutPtr := flag.Duration("timeout", 0, "give up after this time, 0 waits forever")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	client := &http.Client{Timeout: *intervalPtr}
	start := time.Now()
	for {
		res, err := client.Get(*urlPtr)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				logger.Info("service is available", zap.String("url", *urlPtr), zap.Duration("waited", time.Since(start)))
				return
			}
			logger.Info("service not ready", zap.Int("status", res.StatusCode))
		} else {
			logger.Info("service not reachable", zap.Error(err))
		}
		if *timeoutPtr > 0 && time.Since(start) >= *timeoutPtr {
			logger.Fatal("gave up waiting", zap.String("url", *urlPtr), zap.Duration("timeout", *timeoutPtr))
		}
		logger.Info("waiting", zap.Duration("interval", *intervalPtr), zap.Duration("total", time.Since(start)))
		time.Sleep(*intervalPtr)
	}
}
