package socket

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakeConn struct {
	received []interface{}
	failing  bool
	closed   bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	if c.failing {
		return errors.New("broken pipe")
	}
	c.received = append(c.received, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestConnectDisconnect(t *testing.T) {
	manager := NewManager()

	conn1 := &fakeConn{}
	conn2 := &fakeConn{}
	manager.Connect(1, conn1)
	manager.Connect(1, conn2)
	assert.Equal(t, int64(2), manager.ConnectionCount())

	manager.Disconnect(conn1)
	assert.Equal(t, int64(1), manager.ConnectionCount())

	// second disconnect of the same handle is a no-op
	manager.Disconnect(conn1)
	assert.Equal(t, int64(1), manager.ConnectionCount())

	manager.Disconnect(conn2)
	assert.Equal(t, int64(0), manager.ConnectionCount())
}

func TestUnicastReachesEveryConnection(t *testing.T) {
	manager := NewManager()

	conn1 := &fakeConn{}
	conn2 := &fakeConn{}
	other := &fakeConn{}
	manager.Connect(1, conn1)
	manager.Connect(1, conn2)
	manager.Connect(2, other)

	manager.Unicast(1, "hello")

	assert.Len(t, conn1.received, 1)
	assert.Len(t, conn2.received, 1)
	assert.Len(t, other.received, 0)
}

func TestMulticastScope(t *testing.T) {
	manager := NewManager()

	alice := &fakeConn{}
	bob := &fakeConn{}
	carol := &fakeConn{}
	manager.Connect(1, alice)
	manager.Connect(2, bob)
	manager.Connect(3, carol)

	manager.Subscribe(1, 10)
	manager.Subscribe(2, 10)
	// carol is connected but never joined channel 10

	manager.Multicast(10, "payload")

	assert.Len(t, alice.received, 1)
	assert.Len(t, bob.received, 1)
	assert.Len(t, carol.received, 0)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	manager := NewManager()

	conn := &fakeConn{}
	manager.Connect(1, conn)
	manager.Subscribe(1, 10)

	manager.Multicast(10, "first")
	manager.Unsubscribe(1, 10)
	manager.Multicast(10, "second")

	assert.Equal(t, []interface{}{"first"}, conn.received)
}

func TestFailedSendReapsOnlyThatConnection(t *testing.T) {
	manager := NewManager()

	healthy := &fakeConn{}
	broken := &fakeConn{failing: true}
	manager.Connect(1, healthy)
	manager.Connect(1, broken)
	manager.Subscribe(1, 10)

	manager.Multicast(10, "payload")

	assert.Len(t, healthy.received, 1)
	assert.True(t, broken.closed)
	assert.Equal(t, int64(1), manager.ConnectionCount())

	// the healthy connection keeps the subscription alive
	manager.Multicast(10, "again")
	assert.Len(t, healthy.received, 2)
}

func TestLastDisconnectCascadesUnsubscribe(t *testing.T) {
	manager := NewManager()

	conn1 := &fakeConn{}
	conn2 := &fakeConn{}
	manager.Connect(1, conn1)
	manager.Connect(1, conn2)
	manager.Subscribe(1, 10)
	manager.Subscribe(1, 20)

	// one connection remains, subscriptions survive
	manager.Disconnect(conn1)
	manager.Multicast(10, "still here")
	assert.Len(t, conn2.received, 1)

	// last connection gone, channel membership is swept
	manager.Disconnect(conn2)
	manager.Connect(1, conn1)
	manager.Multicast(10, "after sweep")
	manager.Multicast(20, "after sweep")
	assert.Len(t, conn1.received, 0)
}
