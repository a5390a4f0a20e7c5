package platform

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"strings"
	"time"
)

// ErrAlreadyRunning indicates another FocusGuard window already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const (
	activateRequest = "activate"
	activateReply   = "ok"
)

// InstanceGuard holds the single-instance lock. Later launches reach it over
// the bound port to ask the running window to come forward.
type InstanceGuard struct {
	listener net.Listener
	address  string
}

// AcquireSingleInstance binds a localhost port derived from appName.
func AcquireSingleInstance(appName string) (*InstanceGuard, error) {
	address := instanceAddress(appName)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, address)
	}
	return &InstanceGuard{listener: listener, address: address}, nil
}

// Serve calls onActivate for each activation request until Release.
func (guard *InstanceGuard) Serve(onActivate func()) {
	for {
		conn, err := guard.listener.Accept()
		if err != nil {
			return
		}
		go handleActivation(conn, onActivate)
	}
}

// Release frees the lock. Safe on a nil guard.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	return guard.listener.Close()
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

// Activate asks the instance holding appName's lock to show its window.
func Activate(appName string, timeout time.Duration) error {
	conn, err := net.DialTimeout("tcp", instanceAddress(appName), timeout)
	if err != nil {
		return fmt.Errorf("reach running instance: %w", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	if _, err := fmt.Fprintln(conn, activateRequest); err != nil {
		return fmt.Errorf("send activation: %w", err)
	}
	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("read activation reply: %w", err)
	}
	if strings.TrimSpace(reply) != activateReply {
		return fmt.Errorf("unexpected activation reply %q", strings.TrimSpace(reply))
	}
	return nil
}

func handleActivation(conn net.Conn, onActivate func()) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(time.Second))

	request, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil || strings.TrimSpace(request) != activateRequest {
		return
	}
	if onActivate != nil {
		onActivate()
	}
	_, _ = fmt.Fprintln(conn, activateReply)
}

func instanceAddress(appName string) string {
	return fmt.Sprintf("127.0.0.1:%d", instancePort(appName))
}

func instancePort(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	return minPort + int(hash.Sum32()%uint32(maxPort-minPort+1))
}
