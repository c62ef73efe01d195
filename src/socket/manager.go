package socket

import (
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Return values of Examine.
const (
	NewConnection = 0
	DataReady     = 1
	Failed        = -1
)

// Manager watches a listening socket and the sockets it accepted.
type Manager struct {
	listenFD int
	maxFD    int

	// fdLimit bounds the descriptors an FdSet can hold.
	fdLimit int

	conns mapset.Set
	write mapset.Set

	lastRead  unix.FdSet
	lastWrite unix.FdSet
	accepted  int

	timeout time.Duration

	logger *logrus.Entry
}

// NewManager creates a Manager for the listening socket listenFD. The
// manager blocks indefinitely in Examine until SetTimeout is called.
func NewManager(listenFD int, logger *logrus.Entry) *Manager {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	return &Manager{
		listenFD: listenFD,
		maxFD:    listenFD,
		fdLimit:  unix.FD_SETSIZE,
		conns:    mapset.NewThreadUnsafeSet(),
		write:    mapset.NewThreadUnsafeSet(),
		accepted: -1,
		logger:   logger,
	}
}

// SetTimeout bounds how long Examine waits. A non-positive value waits
// forever.
func (m *Manager) SetTimeout(d time.Duration) {
	m.timeout = d
}

// WatchWrite adds or removes fd from the set checked for writability.
func (m *Manager) WatchWrite(fd int, on bool) {
	if on {
		if m.conns.Contains(fd) {
			m.write.Add(fd)
		}
		return
	}
	m.write.Remove(fd)
}

// Examine waits until at least one watched descriptor is ready.
//
// If the listening socket is readable it accepts one connection, starts
// watching it and returns NewConnection. Otherwise it returns DataReady, and
// Connected reports which sockets are ready. It returns Failed when accept or
// select fails, or when the timeout expires. It never retries. A connection
// whose descriptor does not fit in a select set is closed at once and
// reported as Failed.
func (m *Manager) Examine() int {
	var rset, wset unix.FdSet
	rset.Zero()
	wset.Zero()
	rset.Set(m.listenFD)
	m.conns.Each(func(v interface{}) bool {
		rset.Set(v.(int))
		return false
	})
	m.write.Each(func(v interface{}) bool {
		wset.Set(v.(int))
		return false
	})

	var tv *unix.Timeval
	if m.timeout > 0 {
		t := unix.NsecToTimeval(m.timeout.Nanoseconds())
		tv = &t
	}

	n, err := unix.Select(m.maxFD+1, &rset, &wset, nil, tv)
	if err != nil {
		if err != unix.EINTR {
			m.logger.WithError(err).Error("select")
		}
		m.clearLast()
		return Failed
	}
	if n == 0 {
		m.clearLast()
		return Failed
	}

	m.lastRead = rset
	m.lastWrite = wset

	if rset.IsSet(m.listenFD) {
		fd, _, err := unix.Accept(m.listenFD)
		if err != nil {
			m.logger.WithError(err).Error("accept")
			return Failed
		}
		if fd >= m.fdLimit {
			m.logger.WithFields(logrus.Fields{
				"fd":    fd,
				"limit": m.fdLimit,
			}).Error("Descriptor out of select range, connection refused")
			unix.Close(fd)
			return Failed
		}
		unix.CloseOnExec(fd)
		m.conns.Add(fd)
		if fd > m.maxFD {
			m.maxFD = fd
		}
		m.accepted = fd
		m.logger.WithField("fd", fd).Debug("Accepted connection")
		return NewConnection
	}
	return DataReady
}

// Accepted returns the descriptor accepted by the last Examine call that
// returned NewConnection, or -1.
func (m *Manager) Accepted() int {
	return m.accepted
}

// Connected reports whether fd was ready in the last Examine call, for
// writing if wantWrite is set and for reading otherwise.
func (m *Manager) Connected(fd int, wantWrite bool) bool {
	if !m.conns.Contains(fd) {
		return false
	}
	if wantWrite {
		return m.lastWrite.IsSet(fd)
	}
	return m.lastRead.IsSet(fd)
}

// Remove shuts down and closes fd and stops watching it. It returns false if
// fd is not tracked.
func (m *Manager) Remove(fd int) bool {
	if !m.conns.Contains(fd) {
		return false
	}
	m.conns.Remove(fd)
	m.write.Remove(fd)
	m.lastRead.Clear(fd)
	m.lastWrite.Clear(fd)

	unix.Shutdown(fd, unix.SHUT_RDWR)
	unix.Close(fd)

	if fd == m.maxFD {
		m.maxFD = m.listenFD
		m.conns.Each(func(v interface{}) bool {
			if v.(int) > m.maxFD {
				m.maxFD = v.(int)
			}
			return false
		})
	}
	m.logger.WithField("fd", fd).Debug("Removed connection")
	return true
}

// ConnectedSockets returns the accepted descriptors in ascending order.
func (m *Manager) ConnectedSockets() []int {
	res := make([]int, 0, m.conns.Cardinality())
	for _, v := range m.conns.ToSlice() {
		res = append(res, v.(int))
	}
	sort.Ints(res)
	return res
}

// MaxFD returns the highest descriptor watched.
func (m *Manager) MaxFD() int {
	return m.maxFD
}

// ListenFD ...
func (m *Manager) ListenFD() int {
	return m.listenFD
}

// Close closes every accepted socket and the listening socket.
func (m *Manager) Close() error {
	for _, fd := range m.ConnectedSockets() {
		m.Remove(fd)
	}
	return unix.Close(m.listenFD)
}

func (m *Manager) clearLast() {
	m.lastRead.Zero()
	m.lastWrite.Zero()
}
