//go:build !nogpu

package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // register the Vulkan HAL backend

	"github.com/gogpu/aurora"
)

// Backend creates GPU surfaces on one hal device. The device is either
// opened by the backend or borrowed from a host.
type Backend struct {
	mu       sync.Mutex
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	adapter  string
	external bool
	surfaces int
}

var _ aurora.Backend = (*Backend)(nil)

// NewBackend opens the first discrete or integrated Vulkan adapter, or the
// first adapter of any kind.
func NewBackend() (*Backend, error) {
	halBackend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("gpu: vulkan backend not available")
	}
	instance, err := halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}

	aurora.Logger().Info("GPU backend initialized", "adapter", selected.Info.Name)
	return &Backend{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		adapter:  selected.Info.Name,
	}, nil
}

// NewBackendFromDevice builds a backend on a device and queue the caller
// owns. Close does not destroy them.
func NewBackendFromDevice(device hal.Device, queue hal.Queue) (*Backend, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("gpu: nil device or queue")
	}
	return &Backend{device: device, queue: queue, external: true}, nil
}

// halProvider is implemented by device providers that expose their HAL
// handles.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// NewBackendFromProvider shares the device of a host toolkit. The provider
// must also implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func NewBackendFromProvider(provider gpucontext.DeviceProvider) (*Backend, error) {
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}
	aurora.Logger().Info("GPU backend using shared device",
		"surface_format", fmt.Sprint(provider.SurfaceFormat()))
	return NewBackendFromDevice(device, queue)
}

// Name implements aurora.Backend.
func (b *Backend) Name() string { return aurora.BackendGPU }

// Adapter returns the adapter name, or "" for a borrowed device.
func (b *Backend) Adapter() string { return b.adapter }

// NewSurface implements aurora.Backend.
func (b *Backend) NewSurface(cfg aurora.SurfaceConfig) (aurora.Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.device == nil {
		return nil, &aurora.InitError{Stage: aurora.StageContext, Err: fmt.Errorf("gpu: backend closed")}
	}
	s, err := newSurface(b, cfg)
	if err != nil {
		return nil, err
	}
	b.surfaces++
	return s, nil
}

func (b *Backend) surfaceReleased() {
	b.mu.Lock()
	b.surfaces--
	b.mu.Unlock()
}

// Close destroys an owned device. Surfaces must be released first.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.surfaces > 0 {
		return fmt.Errorf("gpu: %d surfaces still alive", b.surfaces)
	}
	if !b.external {
		if b.device != nil {
			b.device.Destroy()
		}
		if b.instance != nil {
			b.instance.Destroy()
		}
	}
	b.device = nil
	b.queue = nil
	b.instance = nil
	return nil
}
