// Package bleadapter puts the radio coordinator on a real Bluetooth LE stack.
// It registers one GATT service with a single read-only characteristic and
// advertises the device name with that service's UUID.
package bleadapter

import (
	"sync"

	"tinygo.org/x/bluetooth"

	"pairlink-go/errcode"
	"pairlink-go/services/radio"
	"pairlink-go/types"
)

type Adapter struct {
	ble *bluetooth.Adapter
	adv *bluetooth.Advertisement

	// initMu guards the init steps and adv. A step that succeeded is not
	// repeated when a later step fails and Init is called again.
	initMu       sync.Mutex
	inited       bool
	handlerSet   bool
	enabled      bool
	serviceAdded bool

	mu    sync.Mutex
	peers map[string]bluetooth.Device
	obs   radio.ConnectionObserver
	value bluetooth.Characteristic
}

var _ radio.Adapter = (*Adapter)(nil)

// New wraps a, or bluetooth.DefaultAdapter when a is nil.
func New(a *bluetooth.Adapter) *Adapter {
	if a == nil {
		a = bluetooth.DefaultAdapter
	}
	return &Adapter{ble: a, peers: make(map[string]bluetooth.Device)}
}

// Init enables the stack and registers the service. After a success later
// calls do nothing; after a failure the next call resumes at the failed step.
func (a *Adapter) Init(cfg types.DeviceConfig) error {
	a.initMu.Lock()
	defer a.initMu.Unlock()
	if a.inited {
		return nil
	}
	if err := a.init(cfg); err != nil {
		return err
	}
	a.inited = true
	return nil
}

func (a *Adapter) init(cfg types.DeviceConfig) error {
	svcUUID, err := bluetooth.ParseUUID(cfg.ServiceUUID)
	if err != nil {
		return &errcode.E{C: errcode.InvalidConfig, Op: "ble.init", Msg: "service uuid", Err: err}
	}
	chrUUID, err := bluetooth.ParseUUID(cfg.CharacteristicUUID)
	if err != nil {
		return &errcode.E{C: errcode.InvalidConfig, Op: "ble.init", Msg: "characteristic uuid", Err: err}
	}

	if !a.handlerSet {
		a.ble.SetConnectHandler(a.onConnect)
		a.handlerSet = true
	}
	if !a.enabled {
		if err := a.ble.Enable(); err != nil {
			return errcode.Wrap(errcode.AdapterError, "ble.enable", err)
		}
		a.enabled = true
	}

	if !a.serviceAdded {
		if err := a.addService(svcUUID, chrUUID, cfg.CharacteristicValue); err != nil {
			return err
		}
		a.serviceAdded = true
	}

	adv := a.ble.DefaultAdvertisement()
	if err := adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    cfg.Name,
		ServiceUUIDs: []bluetooth.UUID{svcUUID},
	}); err != nil {
		return errcode.Wrap(errcode.AdapterError, "ble.adv_configure", err)
	}
	a.adv = adv
	return nil
}

func (a *Adapter) addService(svcUUID, chrUUID bluetooth.UUID, value string) error {
	if err := a.ble.AddService(&bluetooth.Service{
		UUID: svcUUID,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle: &a.value,
				UUID:   chrUUID,
				Value:  []byte(value),
				Flags:  bluetooth.CharacteristicReadPermission,
			},
		},
	}); err != nil {
		return errcode.Wrap(errcode.AdapterError, "ble.add_service", err)
	}
	return nil
}

func (a *Adapter) advertisement() *bluetooth.Advertisement {
	a.initMu.Lock()
	defer a.initMu.Unlock()
	return a.adv
}

func (a *Adapter) StartAdvertising() error {
	adv := a.advertisement()
	if adv == nil {
		return errcode.New(errcode.InvalidState, "ble.start", "not initialised")
	}
	return adv.Start()
}

func (a *Adapter) StopAdvertising() error {
	adv := a.advertisement()
	if adv == nil {
		return nil
	}
	return adv.Stop()
}

// DisconnectAll drops every tracked central. Disconnect callbacks follow from
// the stack as each link goes down.
func (a *Adapter) DisconnectAll() error {
	a.mu.Lock()
	devs := make([]bluetooth.Device, 0, len(a.peers))
	for _, d := range a.peers {
		devs = append(devs, d)
	}
	a.mu.Unlock()

	var first error
	for _, d := range devs {
		if err := d.Disconnect(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (a *Adapter) ConnectedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.peers)
}

func (a *Adapter) Observe(o radio.ConnectionObserver) {
	a.mu.Lock()
	a.obs = o
	a.mu.Unlock()
}

// onConnect runs on the stack's event context.
func (a *Adapter) onConnect(d bluetooth.Device, connected bool) {
	key := d.Address.String()
	a.mu.Lock()
	if connected {
		a.peers[key] = d
	} else {
		delete(a.peers, key)
	}
	obs := a.obs
	a.mu.Unlock()

	if obs == nil {
		return
	}
	if connected {
		obs.OnConnect()
	} else {
		obs.OnDisconnect()
	}
}
