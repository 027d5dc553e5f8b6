package service

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"auctionscan/conf"
	"auctionscan/log"
	"auctionscan/model"
)

// AuctionMeta auction core meta information, only these fields are parsed, the extra
// fields are ignored
type AuctionMeta struct {
	Name     string `json:"name"`      //title
	Desc     string `json:"desc"`      //description
	Category string `json:"category"`  //category
	ImageUrl string `json:"image_url"` //image or video file link
}

// GetAuctionMeta gets auction meta information from the link
func GetAuctionMeta(url string) (meta AuctionMeta, err error) {
	// If the ipfs link does not give the server address, use the local ipfs server
	realUrl := url
	if strings.Index(url, "/ipfs/Qm") == 0 {
		realUrl = conf.IpfsServer + url
	}

	resp, err := http.Get(realUrl)
	if err != nil {
		return
	}
	data, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	err = json.Unmarshal(data, &meta)
	return
}

// SaveAuctionMeta fetches and stores the meta information of one auction. A dead or
// malformed link leaves placeholder values so the row never blocks on metadata.
func SaveAuctionMeta(id uint64, metaUrl string) {
	name, desc, imageUrl := "Unnamed auction", "", ""
	meta, err := GetAuctionMeta(metaUrl)
	if err != nil {
		log.Warnf("meta fetch for auction %v failed: %v", id, err)
	} else {
		if meta.Name != "" {
			name = meta.Name
		}
		desc, imageUrl = meta.Desc, meta.ImageUrl
	}
	err = DB.Model(&model.Auction{}).Where("id=?", id).Updates(map[string]interface{}{
		"name":      name,
		"desc":      desc,
		"image_url": imageUrl,
	}).Error
	if err != nil {
		log.Warnf("meta store for auction %v failed: %v", id, err)
	}
}
