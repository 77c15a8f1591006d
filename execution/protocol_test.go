// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package execution

import (
	"testing"

	"github.com/aungmawjj/calltoken/contract"
	"github.com/aungmawjj/calltoken/ledger"
	"github.com/stretchr/testify/assert"
)

var (
	accMinter = []byte{1, 1, 1}
	accA      = []byte{2, 2, 2}
	accB      = []byte{3, 3, 3}
)

func newTestProtocol(contracts map[string]contract.Contract) (
	*Protocol, *contract.MockState,
) {
	state := contract.NewMockState()
	lgr := ledger.New()
	lgr.Init(state, accMinter)
	lgr.Mint(state, accMinter, accA, 100)

	reg := newTestRegistry(state, contracts)
	proto := NewProtocol(lgr, reg)

	// receivers constructed before the protocol get it wired here
	for _, c := range contracts {
		switch r := c.(type) {
		case *reentrantReceiver:
			r.proto = proto
		case *doubleSpendReceiver:
			r.proto = proto
		}
	}
	return proto, state
}

func TestProtocol_TransferAcknowledged(t *testing.T) {
	assert := assert.New(t)

	recv := new(ackReceiver)
	proto, state := newTestProtocol(map[string]contract.Contract{
		"recv": recv,
	})
	lgr := proto.Ledger()

	err := proto.TransferAndNotify(state, accA, accA, []byte("recv"), 40, nil)

	assert.NoError(err)
	assert.EqualValues(60, lgr.BalanceOf(state, accA))
	assert.EqualValues(40, lgr.BalanceOf(state, []byte("recv")))
	assert.EqualValues(100, lgr.Total(state))

	assert.Equal(1, len(recv.transferCalls), "callback invoked exactly once")
	assert.Equal(accA, recv.transferCalls[0].operator)
	assert.Equal(accA, recv.transferCalls[0].subject)
	assert.EqualValues(40, recv.transferCalls[0].amount)
	assert.Empty(recv.transferCalls[0].payload, "nil payload means zero length payload")
}

func TestProtocol_TransferPayload(t *testing.T) {
	assert := assert.New(t)

	recv := new(ackReceiver)
	proto, state := newTestProtocol(map[string]contract.Contract{
		"recv": recv,
	})

	err := proto.TransferAndNotify(state, accA, accA, []byte("recv"), 5, []byte("invoice-7"))

	assert.NoError(err)
	assert.Equal([]byte("invoice-7"), recv.transferCalls[0].payload)
}

func TestProtocol_TransferLedgerRejected(t *testing.T) {
	assert := assert.New(t)

	proto, state := newTestProtocol(map[string]contract.Contract{
		"recv": new(ackReceiver),
	})
	lgr := proto.Ledger()

	err := proto.TransferAndNotify(state, accA, accA, []byte("recv"), 101, nil)

	assert.ErrorIs(err, ErrLedgerRejected)
	assert.EqualValues(100, lgr.BalanceOf(state, accA), "no state change on ledger failure")
	assert.EqualValues(0, lgr.BalanceOf(state, []byte("recv")))
}

func TestProtocol_TransferReceiverNotContract(t *testing.T) {
	assert := assert.New(t)

	proto, state := newTestProtocol(nil)
	lgr := proto.Ledger()

	err := proto.TransferAndNotify(state, accA, accA, accB, 40, nil)

	assert.ErrorIs(err, ErrReceiverNotContract)
	assert.EqualValues(100, lgr.BalanceOf(state, accA), "full rollback")
	assert.EqualValues(0, lgr.BalanceOf(state, accB))
}

func TestProtocol_TransferReceiverIncapable(t *testing.T) {
	assert := assert.New(t)

	proto, state := newTestProtocol(map[string]contract.Contract{
		"plain": new(stubContract),
	})
	lgr := proto.Ledger()

	err := proto.TransferAndNotify(state, accA, accA, []byte("plain"), 40, nil)

	assert.ErrorIs(err, ErrReceiverIncapable)
	assert.EqualValues(100, lgr.BalanceOf(state, accA), "full rollback")
}

func TestProtocol_TransferReceiverRejected(t *testing.T) {
	assert := assert.New(t)

	proto, state := newTestProtocol(map[string]contract.Contract{
		"wrong":   &wrongTagReceiver{ret: []byte{1, 2, 3, 4}},
		"decline": &errorReceiver{msg: "deposits are closed"},
	})
	lgr := proto.Ledger()

	err := proto.TransferAndNotify(state, accA, accA, []byte("wrong"), 40, nil)
	assert.ErrorIs(err, ErrReceiverRejected)
	assert.EqualValues(100, lgr.BalanceOf(state, accA), "full rollback")

	err = proto.TransferAndNotify(state, accA, accA, []byte("decline"), 40, nil)
	assert.ErrorIs(err, ErrReceiverRejected)
	assert.Contains(err.Error(), "deposits are closed", "diagnostic preserved verbatim")
	assert.EqualValues(100, lgr.BalanceOf(state, accA))
}

func TestProtocol_DelegatedTransfer(t *testing.T) {
	assert := assert.New(t)

	recv := new(ackReceiver)
	proto, state := newTestProtocol(map[string]contract.Contract{
		"recv": recv,
	})
	lgr := proto.Ledger()
	operator := []byte{7, 7, 7}

	err := proto.TransferAndNotify(state, operator, accA, []byte("recv"), 40, nil)
	assert.ErrorIs(err, ErrLedgerRejected, "no allowance yet")

	lgr.Approve(state, accA, operator, 50)
	err = proto.TransferAndNotify(state, operator, accA, []byte("recv"), 40, nil)

	assert.NoError(err)
	assert.EqualValues(60, lgr.BalanceOf(state, accA))
	assert.EqualValues(40, lgr.BalanceOf(state, []byte("recv")))
	assert.EqualValues(10, lgr.Allowance(state, accA, operator))
	assert.Equal(operator, recv.transferCalls[0].operator)
	assert.Equal(accA, recv.transferCalls[0].subject)
}

func TestProtocol_DelegatedTransferRollback(t *testing.T) {
	assert := assert.New(t)

	proto, state := newTestProtocol(map[string]contract.Contract{
		"decline": &errorReceiver{msg: "no"},
	})
	lgr := proto.Ledger()
	operator := []byte{7, 7, 7}
	lgr.Approve(state, accA, operator, 50)

	err := proto.TransferAndNotify(state, operator, accA, []byte("decline"), 40, nil)

	assert.ErrorIs(err, ErrReceiverRejected)
	assert.EqualValues(50, lgr.Allowance(state, accA, operator),
		"allowance decrement rolled back with the transfer")
	assert.EqualValues(100, lgr.BalanceOf(state, accA))
}

func TestProtocol_ApproveAcknowledged(t *testing.T) {
	assert := assert.New(t)

	recv := new(ackReceiver)
	proto, state := newTestProtocol(map[string]contract.Contract{
		"spender": recv,
	})
	lgr := proto.Ledger()

	err := proto.ApproveAndNotify(state, accA, []byte("spender"), 50, nil)

	assert.NoError(err)
	assert.EqualValues(50, lgr.Allowance(state, accA, []byte("spender")))
	assert.Equal(1, len(recv.approvalCalls))
	assert.Equal(accA, recv.approvalCalls[0].operator)
	assert.EqualValues(50, recv.approvalCalls[0].amount)

	// round trip: the spender pulls part of the approved amount
	err = lgr.TransferFrom(state, []byte("spender"), accA, accB, 40)
	assert.NoError(err)
	assert.EqualValues(10, lgr.Allowance(state, accA, []byte("spender")))
	assert.EqualValues(60, lgr.BalanceOf(state, accA))
	assert.EqualValues(40, lgr.BalanceOf(state, accB))

	err = lgr.TransferFrom(state, []byte("spender"), accA, accB, 11)
	assert.ErrorIs(err, ledger.ErrNotEnoughAllowance)
}

func TestProtocol_ApproveFailures(t *testing.T) {
	assert := assert.New(t)

	proto, state := newTestProtocol(map[string]contract.Contract{
		"plain":   new(stubContract),
		"decline": &errorReceiver{msg: "allowance not wanted"},
	})
	lgr := proto.Ledger()

	err := proto.ApproveAndNotify(state, accA, accB, 50, nil)
	assert.ErrorIs(err, ErrSpenderNotContract)

	err = proto.ApproveAndNotify(state, accA, []byte("plain"), 50, nil)
	assert.ErrorIs(err, ErrSpenderIncapable)

	err = proto.ApproveAndNotify(state, accA, []byte("decline"), 50, nil)
	assert.ErrorIs(err, ErrSpenderRejected)
	assert.Contains(err.Error(), "allowance not wanted")

	assert.EqualValues(0, lgr.Allowance(state, accA, accB), "no residual allowance")
	assert.EqualValues(0, lgr.Allowance(state, accA, []byte("plain")))
	assert.EqualValues(0, lgr.Allowance(state, accA, []byte("decline")))
}

func TestProtocol_Events(t *testing.T) {
	assert := assert.New(t)

	proto, state := newTestProtocol(map[string]contract.Contract{
		"recv": new(ackReceiver),
	})
	sub := proto.SubscribeEvents(5)
	defer sub.Unsubscribe()

	proto.TransferAndNotify(state, accA, accA, []byte("recv"), 40, nil)
	proto.TransferAndNotify(state, accA, accA, accB, 10, nil)

	e := (<-sub.Events()).(NotifyEvent)
	assert.True(e.Committed)
	assert.Equal(TransferNotification, e.Kind)
	assert.EqualValues(40, e.Amount)

	e = (<-sub.Events()).(NotifyEvent)
	assert.False(e.Committed)
	assert.Equal(ErrReceiverNotContract.Error(), e.Reason)
}

func TestProtocol_ReentrantForward(t *testing.T) {
	assert := assert.New(t)

	forwarder := &reentrantReceiver{addr: []byte("fwd"), forward: []byte("sink")}
	sink := new(ackReceiver)
	proto, state := newTestProtocol(map[string]contract.Contract{
		"fwd":  forwarder,
		"sink": sink,
	})
	lgr := proto.Ledger()

	err := proto.TransferAndNotify(state, accA, accA, []byte("fwd"), 40, nil)

	assert.NoError(err)
	assert.NoError(forwarder.errs[0], "reentrant spend of received tokens is valid")
	assert.EqualValues(60, lgr.BalanceOf(state, accA))
	assert.EqualValues(0, lgr.BalanceOf(state, []byte("fwd")))
	assert.EqualValues(40, lgr.BalanceOf(state, []byte("sink")))
	assert.EqualValues(100, lgr.Total(state), "conservation across nested calls")
}

func TestProtocol_ReentrantDoubleSpend(t *testing.T) {
	assert := assert.New(t)

	thief := &doubleSpendReceiver{addr: []byte("thief"), victim: accA}
	proto, state := newTestProtocol(map[string]contract.Contract{
		"thief": thief,
	})
	lgr := proto.Ledger()

	err := proto.TransferAndNotify(state, accA, accA, []byte("thief"), 80, nil)

	assert.NoError(err, "outer transfer still acknowledged")
	assert.ErrorIs(thief.errs[0], ErrLedgerRejected,
		"reentrant spend of the sender's tokens needs an allowance")
	assert.EqualValues(20, lgr.BalanceOf(state, accA))
	assert.EqualValues(80, lgr.BalanceOf(state, []byte("thief")))
	assert.EqualValues(100, lgr.Total(state), "no tokens created by reentrancy")
}
