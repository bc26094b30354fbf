package dispatch

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidwatch/anon-chat/registry"
	"vidwatch/anon-chat/rooms"
	"vidwatch/anon-chat/types"
)

// fakeTransport implements registry.Transport for testing fan-out.
type fakeTransport struct {
	mu       sync.Mutex
	frames   [][]byte
	writeErr error
}

func (f *fakeTransport) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	f.frames = append(f.frames, cp)
	return nil
}

func (f *fakeTransport) WriteControl(messageType int, data []byte, deadline time.Time) error {
	return nil
}

func (f *fakeTransport) Close() error { return nil }

func (f *fakeTransport) received(t *testing.T) []types.Message {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	msgs := make([]types.Message, 0, len(f.frames))
	for _, frame := range f.frames {
		var msg types.Message
		require.NoError(t, json.Unmarshal(frame, &msg))
		msgs = append(msgs, msg)
	}
	return msgs
}

type fixture struct {
	reg  *registry.Registry
	rm   *rooms.Manager
	disp *Dispatcher
}

func newFixture() *fixture {
	reg := registry.NewRegistry()
	rm := rooms.NewManager(zerolog.Nop())
	return &fixture{
		reg:  reg,
		rm:   rm,
		disp: New(rm, reg, zerolog.Nop()),
	}
}

func (fx *fixture) addMember(room string, ft *fakeTransport) string {
	id := fx.reg.Register(ft)
	fx.rm.Attach(room, id)
	return id
}

func TestBroadcastReachesEveryMember(t *testing.T) {
	fx := newFixture()
	a, b := &fakeTransport{}, &fakeTransport{}
	fx.addMember("abc", a)
	fx.addMember("abc", b)

	fx.disp.Broadcast("abc", types.Message{Type: types.WsMessage, Nickname: "Fox42", Message: "hi"}, "")

	for _, ft := range []*fakeTransport{a, b} {
		msgs := ft.received(t)
		require.Len(t, msgs, 1)
		assert.Equal(t, "Fox42", msgs[0].Nickname)
		assert.Equal(t, "hi", msgs[0].Message)
	}
}

func TestBroadcastExcludesOriginator(t *testing.T) {
	fx := newFixture()
	sender, other := &fakeTransport{}, &fakeTransport{}
	senderID := fx.addMember("abc", sender)
	fx.addMember("abc", other)

	fx.disp.Broadcast("abc", types.Message{Type: types.WsUserJoined, Nickname: "Owl7"}, senderID)

	assert.Empty(t, sender.received(t))
	require.Len(t, other.received(t), 1)
}

func TestBroadcastSurvivesFailingTransport(t *testing.T) {
	fx := newFixture()
	broken := &fakeTransport{writeErr: errors.New("broken pipe")}
	a, b := &fakeTransport{}, &fakeTransport{}
	fx.addMember("abc", broken)
	fx.addMember("abc", a)
	fx.addMember("abc", b)

	fx.disp.Broadcast("abc", types.Message{Type: types.WsMessage, Message: "still delivered"}, "")

	assert.Len(t, a.received(t), 1)
	assert.Len(t, b.received(t), 1)
}

func TestBroadcastToUnknownRoomIsNoop(t *testing.T) {
	fx := newFixture()
	ft := &fakeTransport{}
	fx.addMember("abc", ft)

	fx.disp.Broadcast("nope", types.Message{Type: types.WsMessage, Message: "lost"}, "")

	assert.Empty(t, ft.received(t))
}

func TestUnicastHitsOnlyTheTarget(t *testing.T) {
	fx := newFixture()
	target, bystander := &fakeTransport{}, &fakeTransport{}
	targetID := fx.addMember("abc", target)
	fx.addMember("abc", bystander)

	fx.disp.Unicast(targetID, types.Message{Type: types.WsSystem, Message: "2 people are watching this video"})

	msgs := target.received(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, types.WsSystem, msgs[0].Type)
	assert.Empty(t, bystander.received(t))
}

func TestUnicastToUnknownConnectionIsNoop(t *testing.T) {
	fx := newFixture()

	fx.disp.Unicast("no-such-id", types.Message{Type: types.WsSystem, Message: "hello"})
}
