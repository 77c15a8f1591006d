// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package execution

import (
	"golang.org/x/crypto/sha3"
)

// CallbackKind selects the receiver side callback of a notification
type CallbackKind uint8

const (
	TransferNotification CallbackKind = iota + 1
	ApprovalNotification
)

// canonical callback signatures shared across implementations
const (
	transferCallbackSig = "onTransferReceived(address,address,uint256,bytes)"
	approvalCallbackSig = "onApprovalReceived(address,uint256,bytes)"
)

// Acknowledgment tags. A receiver returns the tag of its callback
// signature to confirm intentional handling of the notification.
var (
	TransferAckTag = selector(transferCallbackSig)
	ApprovalAckTag = selector(approvalCallbackSig)
)

// AckTag gives the expected acknowledgment value for the kind
func (kind CallbackKind) AckTag() []byte {
	switch kind {
	case TransferNotification:
		return TransferAckTag
	case ApprovalNotification:
		return ApprovalAckTag
	default:
		return nil
	}
}

func (kind CallbackKind) String() string {
	switch kind {
	case TransferNotification:
		return "TransferNotification"
	case ApprovalNotification:
		return "ApprovalNotification"
	default:
		return "Unknown"
	}
}

// selector gives the first 4 bytes of the keccak256 hash of the signature
func selector(sig string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return h.Sum(nil)[:4]
}
