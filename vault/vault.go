// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package vault

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/aungmawjj/calltoken/contract"
	"github.com/aungmawjj/calltoken/execution"
	"github.com/aungmawjj/calltoken/util"
)

// state collection prefixes, disjoint from the ledger's
const (
	colDeposit byte = iota + 0x11 // deposit by account
	colGranted                    // granted allowance by owner
)

type Input struct {
	Method string `json:"method"`
	Dest   []byte `json:"dest,omitempty"`
}

// Vault accepts token deposits through transfer notifications and
// records granted allowances through approval notifications.
// Tokens only ever arrive here with the vault's acknowledgment, so a
// recorded deposit always matches a received balance.
type Vault struct{}

var (
	_ contract.Contract         = (*Vault)(nil)
	_ contract.TransferReceiver = (*Vault)(nil)
	_ contract.ApprovalReceiver = (*Vault)(nil)
)

func (v *Vault) Init(cc contract.CallContext) error {
	return nil
}

func (v *Vault) Invoke(cc contract.CallContext) error {
	// deposits only arrive through notifications
	return errors.New("method not found")
}

func (v *Vault) Query(cc contract.CallContext) ([]byte, error) {
	input := new(Input)
	if err := json.Unmarshal(cc.Input(), input); err != nil {
		return nil, errors.New("failed to parse input: " + err.Error())
	}
	switch input.Method {

	case "deposit":
		return json.Marshal(util.DecodeUint64(cc.GetState(depositKey(input.Dest))))

	case "granted":
		return json.Marshal(util.DecodeUint64(cc.GetState(grantedKey(input.Dest))))

	default:
		return nil, errors.New("method not found")
	}
}

func (v *Vault) OnTransferReceived(
	cc contract.CallContext, operator, from []byte, amount uint64,
) ([]byte, error) {
	if amount == 0 {
		return nil, errors.New("vault: zero amount deposit")
	}
	deposit := util.DecodeUint64(cc.GetState(depositKey(from)))
	if deposit > math.MaxUint64-amount {
		return nil, errors.New("vault: deposit overflow")
	}
	cc.SetState(depositKey(from), util.EncodeUint64(deposit+amount))
	return execution.TransferAckTag, nil
}

func (v *Vault) OnApprovalReceived(
	cc contract.CallContext, owner []byte, amount uint64,
) ([]byte, error) {
	if amount == 0 {
		return nil, errors.New("vault: zero amount approval")
	}
	cc.SetState(grantedKey(owner), util.EncodeUint64(amount))
	return execution.ApprovalAckTag, nil
}

func depositKey(account []byte) []byte {
	return util.ConcatBytes([]byte{colDeposit}, account)
}

func grantedKey(account []byte) []byte {
	return util.ConcatBytes([]byte{colGranted}, account)
}
