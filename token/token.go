// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package token

import (
	"encoding/json"
	"errors"

	"github.com/aungmawjj/calltoken/contract"
	"github.com/aungmawjj/calltoken/execution"
	"github.com/aungmawjj/calltoken/ledger"
)

// Input selects a token method.
// Dest is the recipient, spender or mint target depending on the method.
// From names the token owner for delegated methods and for the
// allowance query. An omitted Data field stands for a zero length payload.
type Input struct {
	Method string `json:"method"`
	Dest   []byte `json:"dest,omitempty"`
	From   []byte `json:"from,omitempty"`
	Value  uint64 `json:"value"`
	Data   []byte `json:"data,omitempty"`
}

// Token is the callable token contract. The plain methods are ordinary
// ledger operations; the *AndCall methods additionally notify the
// counterpart and only commit when it acknowledged.
type Token struct {
	ledger *ledger.Ledger
	proto  *execution.Protocol
}

var _ contract.Contract = (*Token)(nil)

func New(proto *execution.Protocol) *Token {
	return &Token{
		ledger: proto.Ledger(),
		proto:  proto,
	}
}

func (tkn *Token) Init(cc contract.CallContext) error {
	tkn.ledger.Init(cc, cc.Sender())
	return nil
}

func (tkn *Token) Invoke(cc contract.CallContext) error {
	input, err := parseInput(cc.Input())
	if err != nil {
		return err
	}
	switch input.Method {

	case "setMinter":
		return tkn.ledger.SetMinter(cc, cc.Sender(), input.Dest)

	case "mint":
		return tkn.ledger.Mint(cc, cc.Sender(), input.Dest, input.Value)

	case "transfer":
		return tkn.ledger.Transfer(cc, cc.Sender(), input.Dest, input.Value)

	case "transferFrom":
		return tkn.ledger.TransferFrom(cc, cc.Sender(), input.From, input.Dest, input.Value)

	case "approve":
		return tkn.ledger.Approve(cc, cc.Sender(), input.Dest, input.Value)

	case "transferAndCall":
		return tkn.proto.TransferAndNotify(
			cc, cc.Sender(), cc.Sender(), input.Dest, input.Value, input.Data)

	case "transferFromAndCall":
		return tkn.proto.TransferAndNotify(
			cc, cc.Sender(), input.From, input.Dest, input.Value, input.Data)

	case "approveAndCall":
		return tkn.proto.ApproveAndNotify(
			cc, cc.Sender(), input.Dest, input.Value, input.Data)

	default:
		return errors.New("method not found")
	}
}

func (tkn *Token) Query(cc contract.CallContext) ([]byte, error) {
	input, err := parseInput(cc.Input())
	if err != nil {
		return nil, err
	}
	switch input.Method {

	case "minter":
		return tkn.ledger.Minter(cc), nil

	case "total":
		return json.Marshal(tkn.ledger.Total(cc))

	case "balance":
		return json.Marshal(tkn.ledger.BalanceOf(cc, input.Dest))

	case "allowance":
		return json.Marshal(tkn.ledger.Allowance(cc, input.From, input.Dest))

	default:
		return nil, errors.New("method not found")
	}
}

func parseInput(b []byte) (*Input, error) {
	input := new(Input)
	err := json.Unmarshal(b, input)
	if err != nil {
		return nil, errors.New("failed to parse input: " + err.Error())
	}
	return input, nil
}
