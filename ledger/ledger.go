// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package ledger

import (
	"bytes"
	"errors"
	"math"

	"github.com/aungmawjj/calltoken/contract"
	"github.com/aungmawjj/calltoken/util"
)

// state collection prefixes
const (
	_                byte = iota
	colMinter             // minter account
	colTotal              // total supply
	colBalance            // balance by account
	colAllowance          // allowance by owner and spender
)

var (
	ErrNotEnoughBalance   = errors.New("not enough balance")
	ErrNotEnoughAllowance = errors.New("not enough allowance")
	ErrAmountOverflow     = errors.New("amount overflow")
	ErrSenderNotMinter    = errors.New("sender must be minter")
)

// Ledger owns fungible token bookkeeping over a contract state.
// Balances, allowances and total supply live under prefixed keys.
// Plain operations here never trigger notifications.
type Ledger struct{}

func New() *Ledger {
	return new(Ledger)
}

// Init sets the minter account. Called once at contract deployment.
func (lgr *Ledger) Init(state contract.State, minter []byte) {
	state.SetState([]byte{colMinter}, minter)
}

func (lgr *Ledger) SetMinter(state contract.State, sender, minter []byte) error {
	if !bytes.Equal(lgr.Minter(state), sender) {
		return ErrSenderNotMinter
	}
	state.SetState([]byte{colMinter}, minter)
	return nil
}

func (lgr *Ledger) Mint(state contract.State, sender, dest []byte, amount uint64) error {
	if !bytes.Equal(lgr.Minter(state), sender) {
		return ErrSenderNotMinter
	}
	total, err := checkedAdd(lgr.Total(state), amount)
	if err != nil {
		return err
	}
	balance, err := checkedAdd(lgr.BalanceOf(state, dest), amount)
	if err != nil {
		return err
	}
	state.SetState([]byte{colTotal}, util.EncodeUint64(total))
	state.SetState(balanceKey(dest), util.EncodeUint64(balance))
	return nil
}

// Transfer moves amount from -> to
func (lgr *Ledger) Transfer(state contract.State, from, to []byte, amount uint64) error {
	return lgr.move(state, from, to, amount)
}

// TransferFrom moves amount from -> to on behalf of spender,
// decrementing the spender's allowance
func (lgr *Ledger) TransferFrom(state contract.State, spender, from, to []byte, amount uint64) error {
	allowance := lgr.Allowance(state, from, spender)
	if allowance < amount {
		return ErrNotEnoughAllowance
	}
	if err := lgr.move(state, from, to, amount); err != nil {
		return err
	}
	state.SetState(allowanceKey(from, spender), util.EncodeUint64(allowance-amount))
	return nil
}

// Approve sets the allowance of spender over owner's tokens.
// The previous allowance is overwritten, not added to.
func (lgr *Ledger) Approve(state contract.State, owner, spender []byte, amount uint64) error {
	state.SetState(allowanceKey(owner, spender), util.EncodeUint64(amount))
	return nil
}

func (lgr *Ledger) Minter(state contract.State) []byte {
	return state.GetState([]byte{colMinter})
}

func (lgr *Ledger) Total(state contract.State) uint64 {
	return util.DecodeUint64(state.GetState([]byte{colTotal}))
}

func (lgr *Ledger) BalanceOf(state contract.State, account []byte) uint64 {
	return util.DecodeUint64(state.GetState(balanceKey(account)))
}

func (lgr *Ledger) Allowance(state contract.State, owner, spender []byte) uint64 {
	return util.DecodeUint64(state.GetState(allowanceKey(owner, spender)))
}

func (lgr *Ledger) move(state contract.State, from, to []byte, amount uint64) error {
	bsrc := lgr.BalanceOf(state, from)
	if bsrc < amount {
		return ErrNotEnoughBalance
	}
	if bytes.Equal(from, to) { // self transfer must not change the balance
		return nil
	}
	bdes, err := checkedAdd(lgr.BalanceOf(state, to), amount)
	if err != nil {
		return err
	}
	state.SetState(balanceKey(from), util.EncodeUint64(bsrc-amount))
	state.SetState(balanceKey(to), util.EncodeUint64(bdes))
	return nil
}

func balanceKey(account []byte) []byte {
	return util.ConcatBytes([]byte{colBalance}, account)
}

// allowanceKey length-prefixes the owner so that
// (owner, spender) pairs cannot collide for variable length accounts
func allowanceKey(owner, spender []byte) []byte {
	return util.ConcatBytes([]byte{colAllowance, byte(len(owner))}, owner, spender)
}

func checkedAdd(x, y uint64) (uint64, error) {
	if x > math.MaxUint64-y {
		return 0, ErrAmountOverflow
	}
	return x + y, nil
}
