package conf

import "auctionscan/common/types"

type network struct {
	Name         string
	Url          string
	AuctionHouse types.Address
}

var networks = map[int64]*network{
	1337: {
		Name:         "localhost",
		Url:          "http://127.0.0.1:8545",
		AuctionHouse: "0x5fbdb2315678afecb367f032d93f642f64180aa3",
	},
	137: {
		Name:         "matic",
		Url:          "https://rpc-mainnet.maticvigil.com",
		AuctionHouse: "0x3fe7b1c6ab2c9f1d0aef4daf2a46b8d45f4f28e0",
	},
	80001: {
		Name:         "mumbai",
		Url:          "https://rpc-mumbai.maticvigil.com",
		AuctionHouse: "0x89a6f57b3d6d58ac8c7a1b0b06bd7b9b6d7e4d10",
	},
	51888: {
		Name:         "wormholes",
		Url:          "http://43.129.181.130:8561",
		AuctionHouse: "0xa03196bf28ffabcab352fe6d58f4aa83998beba1",
	},
	51889: {
		Name:         "wormholes dev",
		Url:          "https://api.wormholestest.com",
		AuctionHouse: "0xa03196bf28ffabcab352fe6d58f4aa83998beba1",
	},
}
