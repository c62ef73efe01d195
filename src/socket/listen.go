package socket

import (
	"net"

	"github.com/b2slc/slowcontrol/src/common"
	"golang.org/x/sys/unix"
)

const backlog = 64

// Listen creates a listening IPv4 TCP socket bound to host:port and returns
// its descriptor. An empty host binds all interfaces; port 0 picks a free
// port (cf Port).
func Listen(host string, port int) (int, error) {
	sa := &unix.SockaddrInet4{Port: port}
	if host != "" {
		ip := net.ParseIP(host)
		if ip == nil {
			addrs, err := net.LookupIP(host)
			if err != nil || len(addrs) == 0 {
				return -1, common.Errorf(common.ConfigErr, "listen", "cannot resolve host %q", host)
			}
			ip = addrs[0]
		}
		ip4 := ip.To4()
		if ip4 == nil {
			return -1, common.Errorf(common.ConfigErr, "listen", "%s is not an IPv4 address", host)
		}
		copy(sa.Addr[:], ip4)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, common.NewError(common.ConnectionErr, "socket", err)
	}
	unix.CloseOnExec(fd)

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, common.NewError(common.ConnectionErr, "setsockopt", err)
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, common.NewError(common.ConnectionErr, "bind", err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return -1, common.NewError(common.ConnectionErr, "listen", err)
	}
	return fd, nil
}

// Port returns the local port a socket is bound to.
func Port(fd int) (int, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return 0, err
	}
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return a.Port, nil
	case *unix.SockaddrInet6:
		return a.Port, nil
	}
	return 0, common.Errorf(common.ConnectionErr, "getsockname", "unexpected address family")
}

// Read reads from fd, retrying when interrupted by a signal. A return of
// (0, nil) means the peer closed the connection.
func Read(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Read(fd, p)
		if err == unix.EINTR {
			continue
		}
		if n < 0 {
			n = 0
		}
		return n, err
	}
}

// WriteAll writes the whole of b to fd.
func WriteAll(fd int, b []byte) error {
	for len(b) > 0 {
		n, err := unix.Write(fd, b)
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
