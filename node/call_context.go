// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package node

import (
	"github.com/aungmawjj/calltoken/contract"
	"github.com/aungmawjj/calltoken/execution"
)

type invokeContext struct {
	sender []byte
	input  []byte
	*execution.StateTracker
}

var _ contract.CallContext = (*invokeContext)(nil)

func (cc *invokeContext) Sender() []byte {
	return cc.sender
}

func (cc *invokeContext) Input() []byte {
	return cc.input
}

type queryContext struct {
	input  []byte
	getter execution.StateGetter
}

var _ contract.CallContext = (*queryContext)(nil)

func (cc *queryContext) Sender() []byte {
	return nil
}

func (cc *queryContext) Input() []byte {
	return cc.input
}

func (cc *queryContext) GetState(key []byte) []byte {
	return cc.getter.GetState(key)
}

func (cc *queryContext) SetState(key, value []byte) {
	// do nothing
}
