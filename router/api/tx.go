package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"auctionscan/backend"
	"auctionscan/common/types"
	"auctionscan/service"
)

func Tx(e *gin.Engine) {
	e.GET("/tx/:hash", getTx)
}

// @Tags        transaction
// @Summary     query a tracked transaction
// @Description Query the live status of a transaction submitted through this server
// @Accept      json
// @Produce     json
// @Param       hash path     string true "Transaction hash"
// @Success     200  {object} scan.PendingTx
// @Failure     404  {object} service.ErrRes
// @Router      /tx/{hash} [get]
func getTx(c *gin.Context) {
	hash := types.Hash(strings.ToLower(c.Param("hash")))
	tx := backend.PendingTx(hash)
	if tx == nil {
		c.JSON(http.StatusNotFound, service.ErrRes{ErrStr: "transaction not tracked"})
		return
	}
	c.JSON(http.StatusOK, tx)
}
