package conf

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/joho/godotenv"

	"auctionscan/common/types"
	"auctionscan/common/utils"
)

// default allocation
var (
	ChainId    int64 = 51888
	HexKey           = "7b2546a5d4e658d079c6b2755c6d7495edd01a686fddae010830e9c93b23e398"
	ServerAddr       = ":3000"
	Interval   int64 = 30
	MysqlDsn         = "root:123456@tcp(127.0.0.1:3306)/auctionscan"
	ResetDB          = false
	IpfsServer       = "http://localhost:8080"

	// discovery and retry tuning
	ProbeWindow     uint64 = 10
	FallbackRange   uint64 = 20
	ProbeBatch             = 5
	ProbeBatchPause        = 500 * time.Millisecond
	RetryMax               = 3
	RetryDelay             = 500 * time.Millisecond
	CallTimeout            = 10 * time.Second
)

// globally available object instantiated from config
var (
	ChainUrl     string                //Chain node address
	AuctionHouse types.Address         //Auction house contract address
	PrivateKey   *secp256k1.PrivateKey //Caller private key
	Caller       types.Address         //Address derived from PrivateKey
)

func init() {
	// set log printout to stdout instead of stderr
	log.SetOutput(os.Stdout)

	// read configuration to override default value
	setConf()

	// check configuration
	if Interval < 10 {
		panic("conf.Interval < 10")
	}
	if FallbackRange < 1 || ProbeBatch < 1 {
		panic("conf: illegal probe tuning")
	}

	var err error
	// Blockchain network configuration
	Network := networks[ChainId]
	if Network == nil {
		panic(fmt.Sprintf("Unsupported chainId: %v", ChainId))
	}

	// Blockchain account private key and RPC client configuration
	PrivateKey, err = utils.HexToECDSA(HexKey)
	if err != nil {
		panic(err)
	}
	Caller = utils.PubkeyToAddress(PrivateKey.PubKey())
	ChainUrl = Network.Url
	AuctionHouse = Network.AuctionHouse
}

func setConf() {
	err := godotenv.Load("auctionscan.env")
	if err != nil {
		log.Println("Failed to load environment variables from .env file,", err)
	}

	// Parse the basic configuration of the server
	if chainId := os.Getenv("CHAIN_ID"); chainId != "" {
		ChainId, err = strconv.ParseInt(chainId, 0, 64)
		if err != nil {
			panic(err)
		}
	}
	if hexKey := os.Getenv("HEX_KEY"); hexKey != "" {
		HexKey = hexKey
	}
	if serverAddr := os.Getenv("SERVER_ADDR"); serverAddr != "" {
		ServerAddr = serverAddr
	}
	if interval := os.Getenv("INTERVAL"); interval != "" {
		Interval, err = strconv.ParseInt(interval, 0, 64)
		if err != nil {
			panic(err)
		}
	}
	if mysqlDsn := os.Getenv("MYSQL_DSN"); mysqlDsn != "" {
		MysqlDsn = mysqlDsn
	}
	if resetDB := os.Getenv("RESET_DB"); resetDB != "" {
		ResetDB = resetDB == "true"
	}
	if ipfsServer := os.Getenv("IPFS_SERVER"); ipfsServer != "" {
		IpfsServer = ipfsServer
	}
	if probeWindow := os.Getenv("PROBE_WINDOW"); probeWindow != "" {
		ProbeWindow, err = strconv.ParseUint(probeWindow, 0, 64)
		if err != nil {
			panic(err)
		}
	}
	if fallbackRange := os.Getenv("FALLBACK_RANGE"); fallbackRange != "" {
		FallbackRange, err = strconv.ParseUint(fallbackRange, 0, 64)
		if err != nil {
			panic(err)
		}
	}
	if probeBatch := os.Getenv("PROBE_BATCH"); probeBatch != "" {
		ProbeBatch, err = strconv.Atoi(probeBatch)
		if err != nil {
			panic(err)
		}
	}
	if pause := os.Getenv("PROBE_BATCH_PAUSE_MS"); pause != "" {
		ms, err := strconv.ParseInt(pause, 0, 64)
		if err != nil {
			panic(err)
		}
		ProbeBatchPause = time.Duration(ms) * time.Millisecond
	}
	if retryMax := os.Getenv("RETRY_MAX"); retryMax != "" {
		RetryMax, err = strconv.Atoi(retryMax)
		if err != nil {
			panic(err)
		}
	}
	if delay := os.Getenv("RETRY_DELAY_MS"); delay != "" {
		ms, err := strconv.ParseInt(delay, 0, 64)
		if err != nil {
			panic(err)
		}
		RetryDelay = time.Duration(ms) * time.Millisecond
	}
	if timeout := os.Getenv("CALL_TIMEOUT_SEC"); timeout != "" {
		sec, err := strconv.ParseInt(timeout, 0, 64)
		if err != nil {
			panic(err)
		}
		CallTimeout = time.Duration(sec) * time.Second
	}
}
