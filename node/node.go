// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package node

import (
	"encoding/hex"
	"log"
	"path"
	"sync"

	"github.com/aungmawjj/calltoken/emitter"
	"github.com/aungmawjj/calltoken/execution"
	"github.com/aungmawjj/calltoken/ledger"
	"github.com/aungmawjj/calltoken/logger"
	"github.com/aungmawjj/calltoken/native"
	"github.com/aungmawjj/calltoken/storage"
	"github.com/aungmawjj/calltoken/token"
	"go.uber.org/zap"
)

// genesis contract addresses
var (
	TokenAddr = native.CodeIDToken
	VaultAddr = native.CodeIDVault
)

type Node struct {
	config Config

	storage  *storage.Storage
	registry *execution.Registry
	proto    *execution.Protocol
	token    *token.Token

	// one unit of work commits at a time
	mtx sync.Mutex
}

func Run(config Config) {
	node := new(Node)
	node.config = config
	node.setupLogger()
	node.setupComponents()
	logger.I().Infow("node setup done, starting api", "port", node.config.APIPort)
	serveNodeAPI(node)
}

func (node *Node) setupLogger() {
	var inst *zap.Logger
	var err error
	if node.config.Debug {
		inst, err = zap.NewDevelopment()
	} else {
		inst, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	logger.Set(inst.Sugar())
}

func (node *Node) setupComponents() {
	db, err := storage.NewDB(path.Join(node.config.Datadir, "db"))
	if err != nil {
		logger.I().Fatalw("cannot open db", "error", err)
	}
	node.storage = storage.New(db)
	node.registry = execution.NewRegistry()
	node.proto = execution.NewProtocol(ledger.New(), node.registry)
	node.token = token.New(node.proto)
	node.registry.RegisterDriver(execution.DriverTypeNative,
		native.NewCodeDriver(node.token))

	if err := node.deployGenesis(); err != nil {
		logger.I().Fatalw("genesis deployment failed", "error", err)
	}
	node.logNotifyEvents()
}

// deployGenesis installs the token and vault contracts on first run
func (node *Node) deployGenesis() error {
	if _, err := node.registry.GetInstance(TokenAddr, node.storage); err == nil {
		return nil
	}
	minter, err := hex.DecodeString(node.config.Minter)
	if err != nil {
		return err
	}

	trk := execution.NewStateTracker(node.storage)
	for _, dep := range []*execution.Deployment{
		{
			CodeAddr: TokenAddr,
			CodeInfo: execution.CodeInfo{
				DriverType: execution.DriverTypeNative,
				CodeID:     native.CodeIDToken,
			},
		},
		{
			CodeAddr: VaultAddr,
			CodeInfo: execution.CodeInfo{
				DriverType: execution.DriverTypeNative,
				CodeID:     native.CodeIDVault,
			},
		},
	} {
		inst, err := node.registry.Deploy(dep, trk)
		if err != nil {
			return err
		}
		if err := inst.Init(&invokeContext{sender: minter, StateTracker: trk}); err != nil {
			return err
		}
	}
	if err := node.storage.Commit(trk.StateChanges()); err != nil {
		return err
	}
	logger.I().Infow("deployed genesis contracts", "minter", node.config.Minter)
	return nil
}

func (node *Node) logNotifyEvents() {
	sub := node.proto.SubscribeEvents(20)
	go sub.Listen(func(e emitter.Event) {
		event, ok := e.(execution.NotifyEvent)
		if !ok {
			return
		}
		if event.Committed {
			logger.I().Infow("notify committed",
				"kind", event.Kind.String(),
				"subject", hex.EncodeToString(event.Subject),
				"counterpart", hex.EncodeToString(event.Counterpart),
				"amount", event.Amount)
		} else {
			logger.I().Infow("notify rolled back",
				"kind", event.Kind.String(),
				"subject", hex.EncodeToString(event.Subject),
				"counterpart", hex.EncodeToString(event.Counterpart),
				"amount", event.Amount,
				"reason", event.Reason)
		}
	})
}

// Invoke runs one token invocation and commits its state changes
func (node *Node) Invoke(sender, input []byte) error {
	node.mtx.Lock()
	defer node.mtx.Unlock()

	trk := execution.NewStateTracker(node.storage)
	cc := &invokeContext{sender: sender, input: input, StateTracker: trk}
	if err := node.token.Invoke(cc); err != nil {
		return err
	}
	return node.storage.Commit(trk.StateChanges())
}

// Query runs a read only contract query against committed state
func (node *Node) Query(codeAddr, input []byte) ([]byte, error) {
	inst, err := node.registry.GetInstance(codeAddr, node.storage)
	if err != nil {
		return nil, err
	}
	return inst.Query(&queryContext{input: input, getter: node.storage})
}
