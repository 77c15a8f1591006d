// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package native

import (
	"bytes"
	"errors"

	"github.com/aungmawjj/calltoken/contract"
	"github.com/aungmawjj/calltoken/execution"
	"github.com/aungmawjj/calltoken/token"
	"github.com/aungmawjj/calltoken/vault"
)

var (
	CodeIDToken = bytes.Repeat([]byte{1}, 32)
	CodeIDVault = bytes.Repeat([]byte{2}, 32)
)

type codeDriver struct {
	token *token.Token
}

var _ execution.CodeDriver = (*codeDriver)(nil)

// NewCodeDriver creates the driver for built in contracts.
// The token contract is a singleton wired to the notification protocol.
func NewCodeDriver(tkn *token.Token) execution.CodeDriver {
	return &codeDriver{token: tkn}
}

func (drv *codeDriver) Install(codeID, data []byte) error {
	_, err := drv.GetInstance(codeID)
	return err
}

func (drv *codeDriver) GetInstance(codeID []byte) (contract.Contract, error) {
	switch string(codeID) {
	case string(CodeIDToken):
		return drv.token, nil
	case string(CodeIDVault):
		return new(vault.Vault), nil
	default:
		return nil, errors.New("unknown native contract id")
	}
}
