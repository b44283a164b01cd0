package bleadapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/bluetooth"

	"pairlink-go/errcode"
	"pairlink-go/types"
)

type countingObserver struct{ up, down int }

func (o *countingObserver) OnConnect()    { o.up++ }
func (o *countingObserver) OnDisconnect() { o.down++ }

func TestInitRejectsMalformedUUID(t *testing.T) {
	a := New(nil)
	err := a.Init(types.DeviceConfig{Name: "x", ServiceUUID: "not-a-uuid", CharacteristicUUID: "681285a6-247f-48c6-80ad-68c3dce18585"})
	require.Error(t, err)
	assert.Equal(t, errcode.InvalidConfig, errcode.Of(err))

}

func TestInitIsRetriedAfterFailure(t *testing.T) {
	a := New(nil)
	err := a.Init(types.DeviceConfig{Name: "x", ServiceUUID: "not-a-uuid", CharacteristicUUID: "681285a6-247f-48c6-80ad-68c3dce18585"})
	require.Error(t, err)

	// The second call runs again and trips over its own config.
	err = a.Init(types.DeviceConfig{Name: "x", ServiceUUID: "9b574847-f706-436c-bed7-fc01eb0965c1", CharacteristicUUID: "bad"})
	var e *errcode.E
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errcode.InvalidConfig, e.C)
	assert.Equal(t, "characteristic uuid", e.Msg)
	assert.False(t, a.inited)
	assert.False(t, a.handlerSet, "no stack step ran before the config was valid")
	assert.Equal(t, errcode.InvalidState, errcode.Of(a.StartAdvertising()))
}

func TestStartBeforeInit(t *testing.T) {
	a := New(nil)
	assert.Equal(t, errcode.InvalidState, errcode.Of(a.StartAdvertising()))
	assert.NoError(t, a.StopAdvertising())
}

func TestConnectCallbacksTrackPeers(t *testing.T) {
	a := New(nil)
	obs := &countingObserver{}
	a.Observe(obs)

	var d bluetooth.Device
	a.onConnect(d, true)
	assert.Equal(t, 1, a.ConnectedCount())
	assert.Equal(t, 1, obs.up)

	a.onConnect(d, false)
	assert.Zero(t, a.ConnectedCount())
	assert.Equal(t, 1, obs.down)
}
