// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package contract

type MockState struct {
	StateMap map[string][]byte
}

func NewMockState() *MockState {
	return &MockState{
		StateMap: make(map[string][]byte),
	}
}

func (ms *MockState) GetState(key []byte) []byte {
	return ms.StateMap[string(key)]
}

func (ms *MockState) SetState(key, value []byte) {
	ms.StateMap[string(key)] = value
}

type MockCallContext struct {
	MockSender []byte
	MockInput  []byte
	State
}

var _ CallContext = (*MockCallContext)(nil)

func (cc *MockCallContext) Sender() []byte {
	return cc.MockSender
}

func (cc *MockCallContext) Input() []byte {
	return cc.MockInput
}
