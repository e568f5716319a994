//go:generate go run go.uber.org/mock/mockgen -source=manager.go -destination=mock/manager.go
package socket

import (
	"sync"
)

// Conn is the minimal transport surface the broker needs. Implementations
// must serialize their own writes; the broker sends outside its lock.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Manager owns all live-transport bookkeeping: which connections belong to
// which user and which users are subscribed to which channel. Delivery is
// best-effort, at most once, no acknowledgement and no retry; ordering is
// preserved only within a single connection's send sequence.
type Manager interface {
	Connect(userID uint, conn Conn)
	Disconnect(conn Conn)
	Subscribe(userID uint, channelID uint)
	Unsubscribe(userID uint, channelID uint)
	Unicast(userID uint, payload interface{})
	Multicast(channelID uint, payload interface{})
	ConnectionCount() int64
}

type connectionManager struct {
	mu sync.Mutex

	userConns    map[uint]map[Conn]bool
	connUser     map[Conn]uint
	channelUsers map[uint]map[uint]bool
	userChannels map[uint]map[uint]bool
}

// NewManager creates a new connection manager
func NewManager() Manager {
	return &connectionManager{
		userConns:    make(map[uint]map[Conn]bool),
		connUser:     make(map[Conn]uint),
		channelUsers: make(map[uint]map[uint]bool),
		userChannels: make(map[uint]map[uint]bool),
	}
}

// Connect registers a live transport for a user
func (m *connectionManager) Connect(userID uint, conn Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.userConns[userID] == nil {
		m.userConns[userID] = make(map[Conn]bool)
	}
	m.userConns[userID][conn] = true
	m.connUser[conn] = userID
}

// Disconnect deregisters a transport. When it was the user's last live
// connection, the user is unsubscribed from every channel in both
// directions of the index, so no orphaned membership survives.
// Calling it twice on the same handle is a no-op the second time.
func (m *connectionManager) Disconnect(conn Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	userID, ok := m.connUser[conn]
	if !ok {
		return
	}
	delete(m.connUser, conn)

	conns := m.userConns[userID]
	delete(conns, conn)
	if len(conns) > 0 {
		return
	}
	delete(m.userConns, userID)

	for channelID := range m.userChannels[userID] {
		subs := m.channelUsers[channelID]
		delete(subs, userID)
		if len(subs) == 0 {
			delete(m.channelUsers, channelID)
		}
	}
	delete(m.userChannels, userID)
}

// Subscribe adds a user to a channel's fan-out set. Authorization against
// the durable membership record is the caller's responsibility.
func (m *connectionManager) Subscribe(userID uint, channelID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.channelUsers[channelID] == nil {
		m.channelUsers[channelID] = make(map[uint]bool)
	}
	m.channelUsers[channelID][userID] = true

	if m.userChannels[userID] == nil {
		m.userChannels[userID] = make(map[uint]bool)
	}
	m.userChannels[userID][channelID] = true
}

// Unsubscribe removes a user from a channel's fan-out set
func (m *connectionManager) Unsubscribe(userID uint, channelID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.channelUsers[channelID]
	delete(subs, userID)
	if len(subs) == 0 {
		delete(m.channelUsers, channelID)
	}

	channels := m.userChannels[userID]
	delete(channels, channelID)
	if len(channels) == 0 {
		delete(m.userChannels, userID)
	}
}

// Unicast sends a payload to every live connection of a user. A failed send
// reaps only that connection; delivery to the user's other connections is
// unaffected.
func (m *connectionManager) Unicast(userID uint, payload interface{}) {
	m.mu.Lock()
	conns := make([]Conn, 0, len(m.userConns[userID]))
	for conn := range m.userConns[userID] {
		conns = append(conns, conn)
	}
	m.mu.Unlock()

	m.send(conns, payload)
}

// Multicast fans a payload out to every subscribed user's every live
// connection, with the same per-connection reaping policy as Unicast.
func (m *connectionManager) Multicast(channelID uint, payload interface{}) {
	m.mu.Lock()
	var conns []Conn
	for userID := range m.channelUsers[channelID] {
		for conn := range m.userConns[userID] {
			conns = append(conns, conn)
		}
	}
	m.mu.Unlock()

	m.send(conns, payload)
}

func (m *connectionManager) send(conns []Conn, payload interface{}) {
	for _, conn := range conns {
		if err := conn.WriteJSON(payload); err != nil {
			m.Disconnect(conn)
			conn.Close()
		}
	}
}

// ConnectionCount returns the number of live transports
func (m *connectionManager) ConnectionCount() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return int64(len(m.connUser))
}
