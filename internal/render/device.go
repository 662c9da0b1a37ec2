package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import the Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// ErrUnsupported is returned when no usable GPU environment exists:
// no registered backend, no adapter, or device creation failed. The
// condition is reported once at pipeline creation and is permanent;
// there is no retry path.
var ErrUnsupported = errors.New("render: GPU environment unsupported")

// gpuContext holds a pipeline-owned GPU instance, device and queue.
// When the host supplies an external device the pipeline has no
// gpuContext and destroys nothing on teardown.
type gpuContext struct {
	instance    hal.Instance
	device      hal.Device
	queue       hal.Queue
	adapterName string
}

// acquireGPU creates a standalone Vulkan device for offscreen
// rendering, preferring discrete over integrated adapters.
func acquireGPU() (*gpuContext, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrUnsupported)
	}

	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %v", ErrUnsupported, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no GPU adapters found", ErrUnsupported)
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
				selected = &adapters[i]
				break
			}
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %v", ErrUnsupported, err)
	}

	slogger().Info("render: GPU initialized", "adapter", selected.Info.Name)

	return &gpuContext{
		instance:    instance,
		device:      openDev.Device,
		queue:       openDev.Queue,
		adapterName: selected.Info.Name,
	}, nil
}

// destroy releases the owned device and instance. Safe to call on a
// partially constructed context.
func (g *gpuContext) destroy() {
	if g == nil {
		return
	}
	if g.device != nil {
		g.device.Destroy()
		g.device = nil
	}
	if g.instance != nil {
		g.instance.Destroy()
		g.instance = nil
	}
	g.queue = nil
}
