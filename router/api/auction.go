package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"auctionscan/backend"
	"auctionscan/common/types"
	"auctionscan/common/utils"
	"auctionscan/scan"
	"auctionscan/service"
)

func Auction(e *gin.Engine) {
	e.GET("/auction/page", pageAuction)
	e.GET("/auction/discover", discoverAuction)
	e.GET("/auction/:id", getAuction)
	e.GET("/auction/:id/bids", pageAuctionBids)
	e.POST("/auction", createAuction)
	e.POST("/auction/:id/bid", placeBid)
	e.POST("/auction/:id/finalize", finalizeAuction)
	e.POST("/auction/:id/cancel", cancelAuction)
	e.POST("/auction/:id/reveal", revealBid)
	e.POST("/auction/:id/public_history", enablePublicHistory)
}

// @Tags        auction
// @Summary     query auction list
// @Description Query the cached auction list in reverse order of end time
// @Accept      json
// @Produce     json
// @Param       status    query    string false "Lifecycle state, if empty, query all"
// @Param       seller    query    string false "Seller, if empty, query all"
// @Param       page      query    string false "Page, default 1"
// @Param       page_size query    string false "Page size, default 10"
// @Success     200       {object} service.AuctionsRes
// @Failure     400       {object} service.ErrRes
// @Router      /auction/page [get]
func pageAuction(c *gin.Context) {
	req := struct {
		Page     *int   `form:"page"`
		PageSize *int   `form:"page_size"`
		Status   string `form:"status"`
		Seller   string `form:"seller"`
	}{}
	err := c.BindQuery(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	page, size, err := utils.ParsePage(req.Page, req.PageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}

	res, err := service.FetchAuctions(req.Status, strings.ToLower(req.Seller), page, size)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Tags        auction
// @Summary     run a live discovery pass
// @Description Probe the ledger for the current auction set and derive fresh views, bypassing the cache
// @Accept      json
// @Produce     json
// @Param       caller query    string false "Caller address, adds bid ownership fields to the views"
// @Success     200    {object} []scan.View
// @Failure     400    {object} service.ErrRes
// @Router      /auction/discover [get]
func discoverAuction(c *gin.Context) {
	caller := types.Address(strings.ToLower(c.Query("caller")))
	views, err := backend.Discover(c.Request.Context(), caller)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	c.JSON(http.StatusOK, views)
}

// @Tags        auction
// @Summary     query one auction
// @Description Read one auction straight from the ledger and derive its view
// @Accept      json
// @Produce     json
// @Param       id path     string true "Auction id"
// @Success     200 {object} scan.View
// @Failure     400 {object} service.ErrRes
// @Failure     404 {object} service.ErrRes
// @Router      /auction/{id} [get]
func getAuction(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	view, err := backend.AuctionById(c.Request.Context(), id)
	if errors.Is(err, scan.ErrNotFound) {
		c.JSON(http.StatusNotFound, service.ErrRes{ErrStr: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Tags        auction
// @Summary     query bid list of one auction
// @Description Query the recorded bid confirmations, amounts stay sealed unless public reveal is on
// @Accept      json
// @Produce     json
// @Param       id        path     string true  "Auction id"
// @Param       page      query    string false "Page, default 1"
// @Param       page_size query    string false "Page size, default 10"
// @Success     200       {object} service.BidsRes
// @Failure     400       {object} service.ErrRes
// @Router      /auction/{id}/bids [get]
func pageAuctionBids(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	req := struct {
		Page     *int `form:"page"`
		PageSize *int `form:"page_size"`
	}{}
	if err = c.BindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	page, size, err := utils.ParsePage(req.Page, req.PageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}

	res, err := service.FetchBids(id, page, size)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.ErrRes{ErrStr: err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
