// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package main

import (
	"github.com/aungmawjj/calltoken/execution"
	"github.com/aungmawjj/calltoken/ledger"
	"github.com/aungmawjj/calltoken/native"
	"github.com/aungmawjj/calltoken/storage"
	"github.com/aungmawjj/calltoken/token"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a local end to end notify scenario",
	Run: func(cmd *cobra.Command, args []string) {
		runDemo()
	},
}

type demoContext struct {
	sender []byte
	input  []byte
	*execution.StateTracker
}

func (cc *demoContext) Sender() []byte { return cc.sender }
func (cc *demoContext) Input() []byte  { return cc.input }

func runDemo() {
	db, err := storage.NewInMemoryDB()
	check(err)
	defer db.Close()
	strg := storage.New(db)

	reg := execution.NewRegistry()
	proto := execution.NewProtocol(ledger.New(), reg)
	tkn := token.New(proto)
	reg.RegisterDriver(execution.DriverTypeNative, native.NewCodeDriver(tkn))

	alice := []byte{0xa1}
	bob := []byte{0xb0}
	lgr := proto.Ledger()

	trk := execution.NewStateTracker(strg)
	for _, codeID := range [][]byte{native.CodeIDToken, native.CodeIDVault} {
		cc, err := reg.Deploy(&execution.Deployment{
			CodeAddr: codeID,
			CodeInfo: execution.CodeInfo{
				DriverType: execution.DriverTypeNative,
				CodeID:     codeID,
			},
		}, trk)
		check(err)
		check(cc.Init(&demoContext{sender: alice, StateTracker: trk}))
	}
	check(lgr.Mint(trk, alice, alice, 100))
	check(strg.Commit(trk.StateChanges()))
	color.Cyan("deployed token and vault, minted 100 to alice")

	trk = execution.NewStateTracker(strg)
	err = proto.TransferAndNotify(trk, alice, alice, native.CodeIDVault, 40, []byte("deposit"))
	if err == nil {
		check(strg.Commit(trk.StateChanges()))
		color.Green("transferAndCall 40 alice -> vault acknowledged")
	} else {
		color.Red("transferAndCall 40 alice -> vault failed: %s", err)
	}
	printBalances(lgr, strg, alice)

	trk = execution.NewStateTracker(strg)
	err = proto.TransferAndNotify(trk, alice, alice, bob, 10, nil)
	if err != nil {
		color.Red("transferAndCall 10 alice -> bob: %s", err)
	}
	printBalances(lgr, strg, alice)

	trk = execution.NewStateTracker(strg)
	err = proto.TransferAndNotify(trk, alice, alice, native.CodeIDVault, 0, nil)
	if err != nil {
		color.Red("transferAndCall 0 alice -> vault: %s", err)
	}

	trk = execution.NewStateTracker(strg)
	err = proto.ApproveAndNotify(trk, alice, native.CodeIDVault, 25, nil)
	if err == nil {
		check(strg.Commit(trk.StateChanges()))
		color.Green("approveAndCall 25 alice -> vault acknowledged")
	} else {
		color.Red("approveAndCall 25 alice -> vault failed: %s", err)
	}
}

func printBalances(lgr *ledger.Ledger, strg *storage.Storage, alice []byte) {
	view := execution.NewStateTracker(strg)
	color.White("  alice: %d, vault: %d, total: %d",
		lgr.BalanceOf(view, alice),
		lgr.BalanceOf(view, native.CodeIDVault),
		lgr.Total(view))
}
