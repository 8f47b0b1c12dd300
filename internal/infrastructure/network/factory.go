package network

import (
	"time"

	"netstate-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// NetworkFactory creates the state observer and applier sharing one command executor.
// When OVS support is disabled, no ovs-vsctl command is ever issued.
type NetworkFactory struct {
	commandExecutor interfaces.CommandExecutor
	fileSystem      interfaces.FileSystem
	netlinker       Netlinker
	ovs             *OvsClient
	timeout         time.Duration
	logger          *logrus.Logger
}

// NewNetworkFactory creates a new NetworkFactory
func NewNetworkFactory(
	executor interfaces.CommandExecutor,
	fs interfaces.FileSystem,
	netlinker Netlinker,
	ovsEnabled bool,
	timeout time.Duration,
	logger *logrus.Logger,
) *NetworkFactory {
	var ovs *OvsClient
	if ovsEnabled {
		ovs = NewOvsClient(executor, timeout, logger)
	}

	logger.WithField("ovs_enabled", ovsEnabled).Debug("Network factory initialized")

	return &NetworkFactory{
		commandExecutor: executor,
		fileSystem:      fs,
		netlinker:       netlinker,
		ovs:             ovs,
		timeout:         timeout,
		logger:          logger,
	}
}

// CreateStateObserver creates the observer reading netlink, sysfs and OVS
func (f *NetworkFactory) CreateStateObserver() interfaces.StateObserver {
	return NewNetlinkObserver(f.netlinker, f.fileSystem, f.ovs, f.logger)
}

// CreateStateApplier creates the applier issuing ip link and ovs-vsctl commands
func (f *NetworkFactory) CreateStateApplier() interfaces.StateApplier {
	return NewIPRouteApplier(f.commandExecutor, f.ovs, f.timeout, f.logger)
}
