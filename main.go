package main

import (
	"time"

	"auctionscan/backend"
	"auctionscan/conf"
	"auctionscan/log"
	"auctionscan/router"
	"auctionscan/service"
)

// @title       auction scan API
// @version     1.0
// @description Sealed-bid auction marketplace back end, discovers auctions on the chain, reconciles them into a query cache and tracks submitted transactions
func main() {
	service.Init()
	if err := backend.Run(conf.ChainUrl, time.Duration(conf.Interval)*time.Second); err != nil {
		log.Fatalf("Backend failed to run: %v", err)
	}
	if err := router.Run(conf.ServerAddr); err != nil {
		log.Fatalf("Server failed to run: %v", err)
	}
}
