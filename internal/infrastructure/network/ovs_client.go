package network

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"netstate-agent/internal/domain/errors"
	"netstate-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const ovsVsctl = "ovs-vsctl"

// OvsClient는 ovs-vsctl로 OVS 브리지와 포트를 조회하고 변경합니다
type OvsClient struct {
	commandExecutor interfaces.CommandExecutor
	timeout         time.Duration
	logger          *logrus.Logger
}

// NewOvsClient는 새로운 OvsClient를 생성합니다
func NewOvsClient(executor interfaces.CommandExecutor, timeout time.Duration, logger *logrus.Logger) *OvsClient {
	return &OvsClient{
		commandExecutor: executor,
		timeout:         timeout,
		logger:          logger,
	}
}

// Bridges는 브리지 이름 -> 포트 목록을 반환합니다.
// 브리지와 같은 이름의 internal 포트는 목록에서 제외합니다.
func (c *OvsClient) Bridges(ctx context.Context) (map[string][]string, error) {
	output, err := c.run(ctx, "list-br")
	if err != nil {
		return nil, err
	}

	bridges := make(map[string][]string)
	for _, bridge := range splitLines(output) {
		out, err := c.run(ctx, "list-ports", bridge)
		if err != nil {
			return nil, err
		}
		ports := []string{}
		for _, port := range splitLines(out) {
			if port != bridge {
				ports = append(ports, port)
			}
		}
		sort.Strings(ports)
		bridges[bridge] = ports
	}
	return bridges, nil
}

// AddBridge는 OVS 브리지를 생성합니다
func (c *OvsClient) AddBridge(ctx context.Context, bridge string) error {
	_, err := c.run(ctx, "--may-exist", "add-br", bridge)
	return err
}

// DeleteBridge는 OVS 브리지를 삭제합니다
func (c *OvsClient) DeleteBridge(ctx context.Context, bridge string) error {
	_, err := c.run(ctx, "--if-exists", "del-br", bridge)
	return err
}

// AddPort는 브리지에 포트를 연결합니다
func (c *OvsClient) AddPort(ctx context.Context, bridge, port string) error {
	_, err := c.run(ctx, "--may-exist", "add-port", bridge, port)
	return err
}

// DeletePort는 브리지에서 포트를 분리합니다
func (c *OvsClient) DeletePort(ctx context.Context, bridge, port string) error {
	_, err := c.run(ctx, "--if-exists", "del-port", bridge, port)
	return err
}

func (c *OvsClient) run(ctx context.Context, args ...string) ([]byte, error) {
	output, err := c.commandExecutor.ExecuteWithTimeout(ctx, c.timeout, ovsVsctl, args...)
	if err != nil {
		if errors.IsTimeoutError(err) {
			return nil, err
		}
		return nil, errors.NewNetworkError(fmt.Sprintf("ovs-vsctl %s 실패", strings.Join(args, " ")), err)
	}
	c.logger.WithField("args", args).Debug("ovs-vsctl 실행 완료")
	return output, nil
}

func splitLines(output []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(output), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
