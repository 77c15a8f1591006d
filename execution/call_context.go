// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package execution

import (
	"github.com/aungmawjj/calltoken/contract"
)

// callbackContext is the call context a receiver gets for one
// notification. Input carries the notification payload verbatim.
// State is the tracker of the enclosing unit of work, so a reentrant
// call observes the ledger mutation of step one in full.
type callbackContext struct {
	sender []byte
	input  []byte
	contract.State
}

var _ contract.CallContext = (*callbackContext)(nil)

func (cc *callbackContext) Sender() []byte {
	return cc.sender
}

func (cc *callbackContext) Input() []byte {
	return cc.input
}
