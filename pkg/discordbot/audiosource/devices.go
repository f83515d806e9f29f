// Package audiosource provides audio.Source implementations that feed a
// voice pipeline: a raw-PCM file reader, a live microphone capture via
// PortAudio, and device enumeration/validation (grounded in the
// teacher's AudioDeviceManager, audio_devices.go).
package audiosource

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/audio"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/discordlog"
)

// Device describes one PortAudio-visible input or output device.
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	IsDefault         bool
	IsInput           bool
	IsOutput          bool
	HostAPI           string
}

// DeviceManager owns the PortAudio library handle and the last device
// enumeration. Initialize/Terminate bracket any use of portaudio, same
// as the teacher's AudioDeviceManager.
type DeviceManager struct {
	mu      sync.RWMutex
	devices []Device
	logger  *discordlog.Logger
}

func NewDeviceManager() *DeviceManager {
	return &DeviceManager{
		logger: discordlog.Global().WithComponent("audiosource"),
	}
}

func (dm *DeviceManager) Initialize() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		dm.logger.WithError(err).Error("failed to initialize portaudio")
		return err
	}
	return dm.refreshDevices()
}

func (dm *DeviceManager) Terminate() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if err := portaudio.Terminate(); err != nil {
		dm.logger.WithError(err).Error("failed to terminate portaudio")
	}
}

func (dm *DeviceManager) refreshDevices() error {
	dm.devices = nil

	defaultInput, _ := portaudio.DefaultInputDevice()
	defaultOutput, _ := portaudio.DefaultOutputDevice()

	devices, err := portaudio.Devices()
	if err != nil {
		return err
	}

	for i, dev := range devices {
		hostAPIName := "unknown"
		if dev.HostApi != nil {
			hostAPIName = dev.HostApi.Name
		}

		d := Device{
			ID:                i,
			Name:              dev.Name,
			MaxInputChannels:  dev.MaxInputChannels,
			MaxOutputChannels: dev.MaxOutputChannels,
			DefaultSampleRate: dev.DefaultSampleRate,
			IsInput:           dev.MaxInputChannels > 0,
			IsOutput:          dev.MaxOutputChannels > 0,
			HostAPI:           hostAPIName,
		}
		if defaultInput != nil && dev == defaultInput {
			d.IsDefault = true
		}
		if defaultOutput != nil && dev == defaultOutput {
			d.IsDefault = true
		}
		dm.devices = append(dm.devices, d)
	}
	return nil
}

func (dm *DeviceManager) Devices() []Device {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make([]Device, len(dm.devices))
	copy(out, dm.devices)
	return out
}

func (dm *DeviceManager) InputDevices() []Device {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	var out []Device
	for _, d := range dm.devices {
		if d.IsInput {
			out = append(out, d)
		}
	}
	return out
}

// ValidateInputDevice checks a device is an input device with at least
// audio.Channels input channels. Its sample rate is not checked.
func (dm *DeviceManager) ValidateInputDevice(deviceID int) error {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	for _, d := range dm.devices {
		if d.ID != deviceID {
			continue
		}
		if !d.IsInput {
			return fmt.Errorf("device %q is not an input device", d.Name)
		}
		if d.MaxInputChannels < audio.Channels {
			return fmt.Errorf("device %q supports max %d input channels, need %d", d.Name, d.MaxInputChannels, audio.Channels)
		}
		return nil
	}
	return fmt.Errorf("no device with id %d", deviceID)
}

// ListInputDevices is a one-shot convenience wrapper bracketing
// Initialize/Terminate, for callers who only need a listing.
func ListInputDevices() ([]Device, error) {
	dm := NewDeviceManager()
	if err := dm.Initialize(); err != nil {
		return nil, err
	}
	defer dm.Terminate()
	return dm.InputDevices(), nil
}
