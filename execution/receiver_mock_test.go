// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package execution

import (
	"errors"

	"github.com/aungmawjj/calltoken/contract"
)

// stubContract gives the Contract methods to test receivers
type stubContract struct{}

func (c *stubContract) Init(cc contract.CallContext) error { return nil }

func (c *stubContract) Invoke(cc contract.CallContext) error {
	return errors.New("method not found")
}

func (c *stubContract) Query(cc contract.CallContext) ([]byte, error) {
	return nil, errors.New("method not found")
}

// recvCall records the arguments a receiver callback observed
type recvCall struct {
	operator []byte
	subject  []byte
	amount   uint64
	payload  []byte
}

// ackReceiver acknowledges every notification with the expected tag
type ackReceiver struct {
	stubContract
	transferCalls []recvCall
	approvalCalls []recvCall
}

func (r *ackReceiver) OnTransferReceived(
	cc contract.CallContext, operator, from []byte, amount uint64,
) ([]byte, error) {
	r.transferCalls = append(r.transferCalls, recvCall{operator, from, amount, cc.Input()})
	return TransferAckTag, nil
}

func (r *ackReceiver) OnApprovalReceived(
	cc contract.CallContext, owner []byte, amount uint64,
) ([]byte, error) {
	r.approvalCalls = append(r.approvalCalls, recvCall{owner, owner, amount, cc.Input()})
	return ApprovalAckTag, nil
}

// wrongTagReceiver completes normally but returns an unexpected value
type wrongTagReceiver struct {
	stubContract
	ret []byte
}

func (r *wrongTagReceiver) OnTransferReceived(
	cc contract.CallContext, operator, from []byte, amount uint64,
) ([]byte, error) {
	return r.ret, nil
}

func (r *wrongTagReceiver) OnApprovalReceived(
	cc contract.CallContext, owner []byte, amount uint64,
) ([]byte, error) {
	return r.ret, nil
}

// errorReceiver declines with a diagnostic error
type errorReceiver struct {
	stubContract
	msg string
}

func (r *errorReceiver) OnTransferReceived(
	cc contract.CallContext, operator, from []byte, amount uint64,
) ([]byte, error) {
	return nil, errors.New(r.msg)
}

func (r *errorReceiver) OnApprovalReceived(
	cc contract.CallContext, owner []byte, amount uint64,
) ([]byte, error) {
	return nil, errors.New(r.msg)
}

// panicReceiver terminates abnormally with the given diagnostic.
// An empty diagnostic stands for a target with no matching callback.
type panicReceiver struct {
	stubContract
	msg string
}

func (r *panicReceiver) OnTransferReceived(
	cc contract.CallContext, operator, from []byte, amount uint64,
) ([]byte, error) {
	panic(r.msg)
}

func (r *panicReceiver) OnApprovalReceived(
	cc contract.CallContext, owner []byte, amount uint64,
) ([]byte, error) {
	panic(r.msg)
}

// reentrantReceiver calls back into the protocol before returning
type reentrantReceiver struct {
	stubContract
	proto   *Protocol
	addr    []byte // own account
	forward []byte // account to forward received tokens to
	errs    []error
}

func (r *reentrantReceiver) OnTransferReceived(
	cc contract.CallContext, operator, from []byte, amount uint64,
) ([]byte, error) {
	err := r.proto.TransferAndNotify(cc, r.addr, r.addr, r.forward, amount, nil)
	r.errs = append(r.errs, err)
	return TransferAckTag, nil
}

// doubleSpendReceiver tries to spend the sender's tokens again reentrantly
type doubleSpendReceiver struct {
	stubContract
	proto  *Protocol
	addr   []byte
	victim []byte
	errs   []error
}

func (r *doubleSpendReceiver) OnTransferReceived(
	cc contract.CallContext, operator, from []byte, amount uint64,
) ([]byte, error) {
	err := r.proto.TransferAndNotify(cc, r.addr, r.victim, r.addr, amount, nil)
	r.errs = append(r.errs, err)
	return TransferAckTag, nil
}

// testCodeDriver resolves test contract instances by code id
type testCodeDriver struct {
	instances map[string]contract.Contract
}

func newTestCodeDriver() *testCodeDriver {
	return &testCodeDriver{
		instances: make(map[string]contract.Contract),
	}
}

func (drv *testCodeDriver) Install(codeID, data []byte) error {
	_, err := drv.GetInstance(codeID)
	return err
}

func (drv *testCodeDriver) GetInstance(codeID []byte) (contract.Contract, error) {
	inst, ok := drv.instances[string(codeID)]
	if !ok {
		return nil, errors.New("unknown test contract id")
	}
	return inst, nil
}

// newTestRegistry deploys the given contracts at their addresses
func newTestRegistry(state contract.State, contracts map[string]contract.Contract) *Registry {
	drv := newTestCodeDriver()
	reg := NewRegistry()
	reg.RegisterDriver(DriverTypeNative, drv)
	for addr, c := range contracts {
		drv.instances[addr] = c
		reg.Deploy(&Deployment{
			CodeAddr: []byte(addr),
			CodeInfo: CodeInfo{DriverType: DriverTypeNative, CodeID: []byte(addr)},
		}, state)
	}
	return reg
}
