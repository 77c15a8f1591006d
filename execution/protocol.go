// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package execution

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/aungmawjj/calltoken/contract"
	"github.com/aungmawjj/calltoken/emitter"
	"github.com/aungmawjj/calltoken/ledger"
	"github.com/aungmawjj/calltoken/logger"
)

var (
	ErrLedgerRejected = errors.New("ledger rejected operation")

	ErrReceiverRejected    = errors.New("receiver rejected transfer")
	ErrReceiverIncapable   = errors.New("receiver cannot handle transfer notification")
	ErrReceiverNotContract = errors.New("receiver is not a contract")

	ErrSpenderRejected    = errors.New("spender rejected approval")
	ErrSpenderIncapable   = errors.New("spender cannot handle approval notification")
	ErrSpenderNotContract = errors.New("spender is not a contract")
)

// NotifyEvent reports the final outcome of one notifying unit of work
type NotifyEvent struct {
	Kind        CallbackKind
	Operator    []byte
	Subject     []byte
	Counterpart []byte
	Amount      uint64
	Committed   bool
	Reason      string
}

// Protocol orchestrates a ledger mutation and the matching notification
// as one all-or-nothing unit. The mutation runs on a spawned state
// tracker which is committed to the base state only when the
// counterpart acknowledged the notification.
type Protocol struct {
	ledger     *ledger.Ledger
	dispatcher *Dispatcher
	emitter    *emitter.Emitter
}

func NewProtocol(lgr *ledger.Ledger, registry *Registry) *Protocol {
	return &Protocol{
		ledger:     lgr,
		dispatcher: NewDispatcher(registry),
		emitter:    emitter.New(),
	}
}

func (p *Protocol) Ledger() *ledger.Ledger {
	return p.ledger
}

// SubscribeEvents creates a subscription for notify outcome events
func (p *Protocol) SubscribeEvents(buffer int) *emitter.Subscription {
	return p.emitter.Subscribe(buffer)
}

// TransferAndNotify moves amount from -> to and notifies the recipient.
// The operator equals from for a direct transfer; a different operator
// makes it a delegated transfer which spends allowance. A nil payload
// stands for the variant without payload.
//
// The callback runs against the unit's own tracker, so a receiver may
// reenter the protocol and observe the fully applied mutation of step
// one. If the outcome is anything but an acknowledgment the mutation is
// dropped and the base state stays untouched.
func (p *Protocol) TransferAndNotify(
	state contract.State, operator, from, to []byte, amount uint64, payload []byte,
) error {
	req := &NotificationRequest{
		Operator:    operator,
		Subject:     from,
		Counterpart: to,
		Amount:      amount,
		Payload:     payload,
		Kind:        TransferNotification,
	}

	trk := NewStateTracker(state)
	var err error
	if bytes.Equal(operator, from) {
		err = p.ledger.Transfer(trk, from, to, amount)
	} else {
		err = p.ledger.TransferFrom(trk, operator, from, to, amount)
	}
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrLedgerRejected, err)
		p.emitOutcome(req, err)
		return err
	}

	out := p.dispatcher.Dispatch(trk, req)
	logger.I().Debugw("dispatched transfer notification",
		"to", to, "amount", amount, "outcome", out.Status.String())

	err = p.concludeTransfer(state, trk, out)
	p.emitOutcome(req, err)
	return err
}

// ApproveAndNotify sets the allowance of spender and notifies it.
// Same all-or-nothing rules as TransferAndNotify. The allowance
// overwrites any previous value; the front running hazard of repeated
// approvals is inherited from the plain ledger and not addressed here.
func (p *Protocol) ApproveAndNotify(
	state contract.State, owner, spender []byte, amount uint64, payload []byte,
) error {
	req := &NotificationRequest{
		Operator:    owner,
		Subject:     owner,
		Counterpart: spender,
		Amount:      amount,
		Payload:     payload,
		Kind:        ApprovalNotification,
	}

	trk := NewStateTracker(state)
	if err := p.ledger.Approve(trk, owner, spender, amount); err != nil {
		err = fmt.Errorf("%w: %v", ErrLedgerRejected, err)
		p.emitOutcome(req, err)
		return err
	}

	out := p.dispatcher.Dispatch(trk, req)
	logger.I().Debugw("dispatched approval notification",
		"spender", spender, "amount", amount, "outcome", out.Status.String())

	err := p.concludeApprove(state, trk, out)
	p.emitOutcome(req, err)
	return err
}

func (p *Protocol) concludeTransfer(
	state contract.State, trk *StateTracker, out DispatchOutcome,
) error {
	switch out.Status {
	case Acknowledged:
		commit(state, trk)
		return nil
	case Rejected:
		if out.Reason == "" {
			return ErrReceiverRejected
		}
		return fmt.Errorf("%w: %s", ErrReceiverRejected, out.Reason)
	case TargetIncapable:
		return ErrReceiverIncapable
	default:
		return ErrReceiverNotContract
	}
}

func (p *Protocol) concludeApprove(
	state contract.State, trk *StateTracker, out DispatchOutcome,
) error {
	switch out.Status {
	case Acknowledged:
		commit(state, trk)
		return nil
	case Rejected:
		if out.Reason == "" {
			return ErrSpenderRejected
		}
		return fmt.Errorf("%w: %s", ErrSpenderRejected, out.Reason)
	case TargetIncapable:
		return ErrSpenderIncapable
	default:
		return ErrSpenderNotContract
	}
}

func (p *Protocol) emitOutcome(req *NotificationRequest, err error) {
	event := NotifyEvent{
		Kind:        req.Kind,
		Operator:    req.Operator,
		Subject:     req.Subject,
		Counterpart: req.Counterpart,
		Amount:      req.Amount,
		Committed:   err == nil,
	}
	if err != nil {
		event.Reason = err.Error()
	}
	p.emitter.Emit(event)
}

func commit(state contract.State, trk *StateTracker) {
	for _, sc := range trk.StateChanges() {
		state.SetState(sc.Key, sc.Value)
	}
}
