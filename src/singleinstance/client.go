package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"
)

// Delegate forwards cmd to a resident instance. delegated is false when no
// resident answered, in which case the caller should start its own.
func Delegate(ctx context.Context, cmd Command) (delegated bool, err error) {
	timeout := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			timeout = d
		}
	}
	start, end := portRange()
	for port := start; port <= end; port++ {
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if !ping(addr, 300*time.Millisecond) {
			continue
		}
		return true, send(addr, cmd, timeout)
	}
	return false, nil
}

// Resident reports whether another instance is listening.
func Resident() bool {
	start, end := portRange()
	for port := start; port <= end; port++ {
		if ping(net.JoinHostPort(residentHost, strconv.Itoa(port)), 300*time.Millisecond) {
			return true
		}
	}
	return false
}

func send(addr string, cmd Command, timeout time.Duration) error {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte(string(cmd) + "\n")); err != nil {
		return err
	}
	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		return err
	}
	switch status {
	case okResponse:
		return nil
	case errResponse:
		msg, _ := io.ReadAll(br)
		return errors.New(string(msg))
	default:
		return errors.New("singleinstance: unexpected response " + strconv.Quote(status))
	}
}

func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte(pingRequest)); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
