package network

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vishvananda/netlink"
)

// MockCommandExecutor는 테스트용 Mock CommandExecutor입니다
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) Execute(ctx context.Context, command string, args ...string) ([]byte, error) {
	argList := []interface{}{ctx, command}
	for _, arg := range args {
		argList = append(argList, arg)
	}
	mockArgs := m.Called(argList...)
	return mockArgs.Get(0).([]byte), mockArgs.Error(1)
}

func (m *MockCommandExecutor) ExecuteWithTimeout(ctx context.Context, timeout time.Duration, command string, args ...string) ([]byte, error) {
	argList := []interface{}{ctx, timeout, command}
	for _, arg := range args {
		argList = append(argList, arg)
	}
	mockArgs := m.Called(argList...)
	return mockArgs.Get(0).([]byte), mockArgs.Error(1)
}

// MockFileSystem은 테스트용 Mock FileSystem입니다
type MockFileSystem struct {
	mock.Mock
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	args := m.Called(path)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	args := m.Called(path, data, perm)
	return args.Error(0)
}

func (m *MockFileSystem) Exists(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

func (m *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	args := m.Called(path, perm)
	return args.Error(0)
}

func (m *MockFileSystem) Remove(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockFileSystem) ListFiles(path string) ([]string, error) {
	args := m.Called(path)
	if files, ok := args.Get(0).([]string); ok {
		return files, args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeNetlinker는 고정된 링크 목록을 반환합니다
type fakeNetlinker struct {
	links []netlink.Link
	err   error
}

func (f *fakeNetlinker) LinkList() ([]netlink.Link, error) {
	return f.links, f.err
}

// recordingExecutor는 실행된 명령을 기록하고 failOn과 일치하는 명령은 실패시킵니다
type recordingExecutor struct {
	lines   []string
	failOn  string
	failErr error
}

func (r *recordingExecutor) Execute(ctx context.Context, command string, args ...string) ([]byte, error) {
	return r.ExecuteWithTimeout(ctx, 0, command, args...)
}

func (r *recordingExecutor) ExecuteWithTimeout(_ context.Context, _ time.Duration, command string, args ...string) ([]byte, error) {
	line := strings.TrimSpace(command + " " + strings.Join(args, " "))
	r.lines = append(r.lines, line)
	if r.failOn != "" && line == r.failOn {
		if r.failErr != nil {
			return nil, r.failErr
		}
		return nil, errors.New("RTNETLINK answers: Operation not permitted")
	}
	return []byte{}, nil
}
