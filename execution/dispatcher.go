// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package execution

import (
	"bytes"
	"fmt"

	"github.com/aungmawjj/calltoken/contract"
)

// NotificationRequest carries the parameters of one ledger mutation to
// the counterpart's callback. Constructed fresh per invocation.
type NotificationRequest struct {
	Operator    []byte
	Subject     []byte
	Counterpart []byte
	Amount      uint64
	Payload     []byte
	Kind        CallbackKind
}

type OutcomeStatus uint8

const (
	Acknowledged OutcomeStatus = iota + 1
	Rejected
	TargetIncapable
	TargetNotContract
)

func (s OutcomeStatus) String() string {
	switch s {
	case Acknowledged:
		return "Acknowledged"
	case Rejected:
		return "Rejected"
	case TargetIncapable:
		return "TargetIncapable"
	case TargetNotContract:
		return "TargetNotContract"
	default:
		return "Unknown"
	}
}

// DispatchOutcome is the classified result of one callback dispatch.
// Reason holds the counterpart's diagnostic verbatim when Status is Rejected.
type DispatchOutcome struct {
	Status OutcomeStatus
	Reason string
}

// Dispatcher performs the capability check, the callback invocation and
// the outcome classification for notifications. It never mutates ledger
// state itself and never retries a callback.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

func (dsp *Dispatcher) Dispatch(state contract.State, req *NotificationRequest) DispatchOutcome {
	target, err := dsp.registry.GetInstance(req.Counterpart, state)
	if err != nil {
		return DispatchOutcome{Status: TargetNotContract}
	}
	cc := &callbackContext{
		sender: req.Operator,
		input:  req.Payload,
		State:  state,
	}
	switch req.Kind {
	case TransferNotification:
		recv, ok := target.(contract.TransferReceiver)
		if !ok {
			return DispatchOutcome{Status: TargetIncapable}
		}
		return dsp.invoke(req.Kind, func() ([]byte, error) {
			return recv.OnTransferReceived(cc, req.Operator, req.Subject, req.Amount)
		})

	case ApprovalNotification:
		recv, ok := target.(contract.ApprovalReceiver)
		if !ok {
			return DispatchOutcome{Status: TargetIncapable}
		}
		return dsp.invoke(req.Kind, func() ([]byte, error) {
			return recv.OnApprovalReceived(cc, req.Subject, req.Amount)
		})

	default:
		return DispatchOutcome{Status: TargetIncapable}
	}
}

// invoke runs the callback once under a recover boundary and classifies
// the result. A panic with a diagnostic counts as an explicit rejection
// carrying the diagnostic verbatim, a panic without one as a missing
// capability.
func (dsp *Dispatcher) invoke(kind CallbackKind, callback func() ([]byte, error)) (out DispatchOutcome) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("%v", r)
			if msg == "" {
				out = DispatchOutcome{Status: TargetIncapable}
			} else {
				out = DispatchOutcome{Status: Rejected, Reason: msg}
			}
		}
	}()
	ret, err := callback()
	if err != nil {
		return DispatchOutcome{Status: Rejected, Reason: err.Error()}
	}
	if bytes.Equal(ret, kind.AckTag()) {
		return DispatchOutcome{Status: Acknowledged}
	}
	return DispatchOutcome{Status: Rejected}
}
