package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"auctionscan/backend"
	"auctionscan/common/types"
	"auctionscan/node"
	"auctionscan/scan"
	"auctionscan/service"
)

// @Tags        auction
// @Summary     create an auction
// @Description Submit a create transaction, single item or collection by token count, and track it
// @Accept      json
// @Produce     json
// @Param       body body     node.CreateAuctionParams true "Auction parameters"
// @Success     200  {object} scan.PendingTx
// @Failure     400  {object} service.ErrRes
// @Router      /auction [post]
func createAuction(c *gin.Context) {
	var p node.CreateAuctionParams
	if err := c.BindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	tx, err := backend.CreateAuction(c.Request.Context(), p)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	c.JSON(http.StatusOK, tx)
}

// @Tags        auction
// @Summary     place a sealed bid
// @Description Submit a bid transaction carrying the amount as value and track it
// @Accept      json
// @Produce     json
// @Param       id   path     string true "Auction id"
// @Param       body body     object true "{\"amount\": \"wei amount\"}"
// @Success     200  {object} scan.PendingTx
// @Failure     400  {object} service.ErrRes
// @Router      /auction/{id}/bid [post]
func placeBid(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	req := struct {
		Amount types.BigInt `json:"amount"`
	}{}
	if err = c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	tx, err := backend.PlaceBid(c.Request.Context(), id, req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	c.JSON(http.StatusOK, tx)
}

// @Tags        auction
// @Summary     finalize an auction
// @Description Submit a finalize transaction for an ended auction and track it
// @Accept      json
// @Produce     json
// @Param       id path     string true "Auction id"
// @Success     200 {object} scan.PendingTx
// @Failure     400 {object} service.ErrRes
// @Router      /auction/{id}/finalize [post]
func finalizeAuction(c *gin.Context) {
	submitById(c, backend.FinalizeAuction)
}

// @Tags        auction
// @Summary     cancel an auction
// @Description Submit a cancel transaction with a reason and track it
// @Accept      json
// @Produce     json
// @Param       id   path     string true  "Auction id"
// @Param       body body     object false "{\"reason\": \"cancellation reason\"}"
// @Success     200  {object} scan.PendingTx
// @Failure     400  {object} service.ErrRes
// @Router      /auction/{id}/cancel [post]
func cancelAuction(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	req := struct {
		Reason string `json:"reason"`
	}{}
	_ = c.BindJSON(&req)
	tx, err := backend.CancelAuction(c.Request.Context(), id, req.Reason)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	c.JSON(http.StatusOK, tx)
}

// @Tags        auction
// @Summary     reveal own bid
// @Description Submit a reveal transaction for the caller's sealed bid and track it
// @Accept      json
// @Produce     json
// @Param       id path     string true "Auction id"
// @Success     200 {object} scan.PendingTx
// @Failure     400 {object} service.ErrRes
// @Router      /auction/{id}/reveal [post]
func revealBid(c *gin.Context) {
	submitById(c, backend.RevealBid)
}

// @Tags        auction
// @Summary     open the bid history
// @Description Submit a transaction enabling public bid history on an own auction and track it
// @Accept      json
// @Produce     json
// @Param       id path     string true "Auction id"
// @Success     200 {object} scan.PendingTx
// @Failure     400 {object} service.ErrRes
// @Router      /auction/{id}/public_history [post]
func enablePublicHistory(c *gin.Context) {
	submitById(c, backend.EnablePublicHistory)
}

func submitById(c *gin.Context, submit func(ctx context.Context, id uint64) (*scan.PendingTx, error)) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	tx, err := submit(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	c.JSON(http.StatusOK, tx)
}
