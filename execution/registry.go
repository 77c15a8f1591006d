// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package execution

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/aungmawjj/calltoken/contract"
	"github.com/aungmawjj/calltoken/util"
)

// registryAddr is the reserved state prefix for code info records
var registryAddr = bytes.Repeat([]byte{0}, 32)

type CodeDriver interface {
	// Install is called when a contract deployment is received
	// After successful Install, GetInstance should give a Contract instance without error
	Install(codeID, data []byte) error
	GetInstance(codeID []byte) (contract.Contract, error)
}

type DriverType uint8

const (
	DriverTypeNative DriverType = iota + 1
)

type CodeInfo struct {
	DriverType DriverType `json:"driverType"`
	CodeID     []byte     `json:"codeID"`
}

type Deployment struct {
	CodeAddr    []byte
	CodeInfo    CodeInfo
	InstallData []byte
}

// Registry resolves contract instances by account address.
// An account is contract capable only if a code info record exists for
// it in state. The record is looked up on every call, never cached.
type Registry struct {
	drivers map[DriverType]CodeDriver
}

func NewRegistry() *Registry {
	reg := new(Registry)
	reg.drivers = make(map[DriverType]CodeDriver)
	return reg
}

func (reg *Registry) RegisterDriver(driverType DriverType, driver CodeDriver) error {
	if _, found := reg.drivers[driverType]; found {
		return errors.New("driver already registered")
	}
	reg.drivers[driverType] = driver
	return nil
}

func (reg *Registry) Deploy(dep *Deployment, state contract.State) (contract.Contract, error) {
	driver, err := reg.getDriver(dep.CodeInfo.DriverType)
	if err != nil {
		return nil, err
	}
	if err := driver.Install(dep.CodeInfo.CodeID, dep.InstallData); err != nil {
		return nil, err
	}
	if err := reg.setCodeInfo(dep.CodeAddr, &dep.CodeInfo, state); err != nil {
		return nil, err
	}
	return driver.GetInstance(dep.CodeInfo.CodeID)
}

func (reg *Registry) GetInstance(codeAddr []byte, state StateGetter) (contract.Contract, error) {
	info, err := reg.getCodeInfo(codeAddr, state)
	if err != nil {
		return nil, err
	}
	driver, err := reg.getDriver(info.DriverType)
	if err != nil {
		return nil, err
	}
	return driver.GetInstance(info.CodeID)
}

func (reg *Registry) getDriver(driverType DriverType) (CodeDriver, error) {
	driver, ok := reg.drivers[driverType]
	if !ok {
		return nil, errors.New("unknown contract driver type")
	}
	return driver, nil
}

func (reg *Registry) setCodeInfo(codeAddr []byte, codeInfo *CodeInfo, state contract.State) error {
	b, err := json.Marshal(codeInfo)
	if err != nil {
		return err
	}
	state.SetState(codeInfoKey(codeAddr), b)
	return nil
}

func (reg *Registry) getCodeInfo(codeAddr []byte, state StateGetter) (*CodeInfo, error) {
	b := state.GetState(codeInfoKey(codeAddr))
	if len(b) == 0 {
		return nil, errors.New("no code at address")
	}
	info := new(CodeInfo)
	return info, json.Unmarshal(b, info)
}

func codeInfoKey(codeAddr []byte) []byte {
	return util.ConcatBytes(registryAddr, codeAddr)
}
