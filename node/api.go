// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package node

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aungmawjj/calltoken/logger"
	"github.com/aungmawjj/calltoken/token"
	"github.com/aungmawjj/calltoken/vault"
	"github.com/gin-gonic/gin"
)

type nodeAPI struct {
	node *Node
}

// invokeRequest carries one token invocation. Accounts are hex encoded.
type invokeRequest struct {
	Sender string `json:"sender"`
	Method string `json:"method"`
	Dest   string `json:"dest"`
	From   string `json:"from"`
	Value  uint64 `json:"value"`
	Data   string `json:"data"`
}

func serveNodeAPI(node *Node) {
	api := &nodeAPI{node}

	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/invoke", api.invoke)

	r.GET("/total", api.getTotal)
	r.GET("/minter", api.getMinter)
	r.GET("/balance/:account", api.getBalance)
	r.GET("/allowance/:owner/:spender", api.getAllowance)

	r.GET("/deposit/:account", api.getDeposit)
	r.GET("/granted/:account", api.getGranted)

	err := r.Run(fmt.Sprintf(":%d", node.config.APIPort))
	if err != nil {
		logger.I().Fatalw("failed to start api", "error", err)
	}
}

func (api *nodeAPI) invoke(c *gin.Context) {
	req := new(invokeRequest)
	if err := c.ShouldBind(req); err != nil {
		c.String(http.StatusBadRequest, "cannot parse request")
		return
	}
	sender, err := hex.DecodeString(req.Sender)
	if err != nil {
		c.String(http.StatusBadRequest, "cannot parse sender")
		return
	}
	input := &token.Input{
		Method: req.Method,
		Value:  req.Value,
		Data:   []byte(req.Data),
	}
	if input.Dest, err = hex.DecodeString(req.Dest); err != nil {
		c.String(http.StatusBadRequest, "cannot parse dest")
		return
	}
	if input.From, err = hex.DecodeString(req.From); err != nil {
		c.String(http.StatusBadRequest, "cannot parse from")
		return
	}
	b, _ := json.Marshal(input)
	if err := api.node.Invoke(sender, b); err != nil {
		logger.I().Warnw("invoke failed", "method", req.Method, "error", err)
		c.String(http.StatusUnprocessableEntity, err.Error())
		return
	}
	c.String(http.StatusOK, "invocation committed")
}

func (api *nodeAPI) getTotal(c *gin.Context) {
	api.queryToken(c, &token.Input{Method: "total"})
}

func (api *nodeAPI) getMinter(c *gin.Context) {
	res, err := api.node.Query(TokenAddr, mustMarshal(&token.Input{Method: "minter"}))
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.String(http.StatusOK, hex.EncodeToString(res))
}

func (api *nodeAPI) getBalance(c *gin.Context) {
	account, err := hex.DecodeString(c.Param("account"))
	if err != nil {
		c.String(http.StatusBadRequest, "cannot parse account")
		return
	}
	api.queryToken(c, &token.Input{Method: "balance", Dest: account})
}

func (api *nodeAPI) getAllowance(c *gin.Context) {
	owner, err := hex.DecodeString(c.Param("owner"))
	if err != nil {
		c.String(http.StatusBadRequest, "cannot parse owner")
		return
	}
	spender, err := hex.DecodeString(c.Param("spender"))
	if err != nil {
		c.String(http.StatusBadRequest, "cannot parse spender")
		return
	}
	api.queryToken(c, &token.Input{Method: "allowance", From: owner, Dest: spender})
}

func (api *nodeAPI) getDeposit(c *gin.Context) {
	api.queryVault(c, "deposit")
}

func (api *nodeAPI) getGranted(c *gin.Context) {
	api.queryVault(c, "granted")
}

func (api *nodeAPI) queryToken(c *gin.Context, input *token.Input) {
	res, err := api.node.Query(TokenAddr, mustMarshal(input))
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "application/json", res)
}

func (api *nodeAPI) queryVault(c *gin.Context, method string) {
	account, err := hex.DecodeString(c.Param("account"))
	if err != nil {
		c.String(http.StatusBadRequest, "cannot parse account")
		return
	}
	res, err := api.node.Query(VaultAddr, mustMarshal(&vault.Input{
		Method: method, Dest: account,
	}))
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "application/json", res)
}

func mustMarshal(v interface{}) []byte {
	b, _ := json.Marshal(v)
	return b
}
