// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package contract

// State is a mutable key-value view of world state
type State interface {
	GetState(key []byte) []byte
	SetState(key, value []byte)
}

// CallContext is the view a contract gets for one invocation.
// For notification callbacks Input carries the caller supplied payload.
type CallContext interface {
	Sender() []byte
	Input() []byte
	State
}

// all contracts implement Contract interface
type Contract interface {
	// Init is called once when the contract is deployed
	Init(cc CallContext) error

	Invoke(cc CallContext) error

	Query(cc CallContext) ([]byte, error)
}

// TransferReceiver is implemented by contracts able to accept
// transfer notifications. The returned bytes must equal the
// transfer acknowledgment tag for the notification to count as accepted.
type TransferReceiver interface {
	OnTransferReceived(cc CallContext, operator, from []byte, amount uint64) ([]byte, error)
}

// ApprovalReceiver is implemented by contracts able to accept
// approval notifications
type ApprovalReceiver interface {
	OnApprovalReceived(cc CallContext, owner []byte, amount uint64) ([]byte, error)
}
