package vulkan

import (
	"fmt"
	stdmath "math"

	vk "github.com/goki/vulkan"
	"github.com/prismengine/prism/engine/core"
	"github.com/prismengine/prism/engine/math"
	"github.com/prismengine/prism/engine/renderer/framegraph"
)

// VulkanSwapchain owns the presentable images. It satisfies the frame
// graph's presentation target so acquire and present flow through it.
type VulkanSwapchain struct {
	ImageFormat vk.SurfaceFormat
	Handle      vk.Swapchain
	Extent      vk.Extent2D
	Images      []vk.Image
	Views       []vk.ImageView

	context      *VulkanContext
	presentQueue vk.Queue
}

type VulkanSwapchainSupportInfo struct {
	Capabilities     vk.SurfaceCapabilities
	FormatCount      uint32
	Formats          []vk.SurfaceFormat
	PresentModeCount uint32
	PresentModes     []vk.PresentMode
}

func SwapchainCreate(context *VulkanContext, width uint32, height uint32) (*VulkanSwapchain, error) {
	swapchain := &VulkanSwapchain{
		context:      context,
		presentQueue: context.Device.PresentQueue,
	}

	swapchainExtent := vk.Extent2D{
		Width:  width,
		Height: height,
	}

	// Choose a swap surface format.
	found := false
	for i := 0; i < int(context.Device.SwapchainSupport.FormatCount); i++ {
		format := context.Device.SwapchainSupport.Formats[i]
		// Preferred formats
		if format.Format == vk.FormatB8g8r8a8Unorm &&
			format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			swapchain.ImageFormat = format
			found = true
		}
	}
	if !found {
		swapchain.ImageFormat = context.Device.SwapchainSupport.Formats[0]
	}

	presentMode := vk.PresentModeFifo
	for i := 0; i < int(context.Device.SwapchainSupport.PresentModeCount); i++ {
		mode := context.Device.SwapchainSupport.PresentModes[i]
		if mode == vk.PresentModeMailbox {
			presentMode = mode
			break
		}
	}

	// Swapchain extent
	if context.Device.SwapchainSupport.Capabilities.CurrentExtent.Width != stdmath.MaxUint32 {
		swapchainExtent = context.Device.SwapchainSupport.Capabilities.CurrentExtent
	}

	// Clamp to the value allowed by the GPU.
	min := context.Device.SwapchainSupport.Capabilities.MinImageExtent
	max := context.Device.SwapchainSupport.Capabilities.MaxImageExtent
	swapchainExtent.Width = math.Clamp(swapchainExtent.Width, min.Width, max.Width)
	swapchainExtent.Height = math.Clamp(swapchainExtent.Height, min.Height, max.Height)
	swapchain.Extent = swapchainExtent

	imageCount := context.Device.SwapchainSupport.Capabilities.MinImageCount + 1
	if context.Device.SwapchainSupport.Capabilities.MaxImageCount > 0 && imageCount > context.Device.SwapchainSupport.Capabilities.MaxImageCount {
		imageCount = context.Device.SwapchainSupport.Capabilities.MaxImageCount
	}

	// The transfer-dst usage allows passes to clear and copy into the
	// presentable images directly.
	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchainExtent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferDstBit),
	}

	// Setup the queue family indices
	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		queueFamilyIndices := []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = queueFamilyIndices
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
		swapchainCreateInfo.QueueFamilyIndexCount = 0
		swapchainCreateInfo.PQueueFamilyIndices = nil
	}

	swapchainCreateInfo.PreTransform = context.Device.SwapchainSupport.Capabilities.CurrentTransform
	swapchainCreateInfo.CompositeAlpha = vk.CompositeAlphaOpaqueBit
	swapchainCreateInfo.PresentMode = presentMode
	swapchainCreateInfo.Clipped = vk.True
	swapchainCreateInfo.OldSwapchain = nil

	var swapchainHandle vk.Swapchain
	if res := vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &swapchainHandle); res != vk.Success {
		err := fmt.Errorf("failed to create swapchain with result: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	swapchain.Handle = swapchainHandle

	// Images
	var actualImageCount uint32 = 0
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &actualImageCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to get swapchain images with result: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	swapchain.Images = make([]vk.Image, actualImageCount)
	swapchain.Views = make([]vk.ImageView, actualImageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &actualImageCount, swapchain.Images); res != vk.Success {
		err := fmt.Errorf("failed to get swapchain images with result: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	// Views
	for i := 0; i < int(actualImageCount); i++ {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    swapchain.Images[i],
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		if res := vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &swapchain.Views[i]); res != vk.Success {
			err := fmt.Errorf("failed to create image view with result: %s", VulkanResultString(res))
			core.LogError(err.Error())
			return nil, err
		}
	}

	core.LogInfo("Swapchain created successfully with %d images.", actualImageCount)

	return swapchain, nil
}

func (vs *VulkanSwapchain) ImageCount() uint32 {
	return uint32(len(vs.Images))
}

func (vs *VulkanSwapchain) ImageHandles() []interface{} {
	handles := make([]interface{}, len(vs.Images))
	for i, image := range vs.Images {
		handles[i] = image
	}
	return handles
}

// AcquireNextImage asks the swapchain for the next presentable image. The
// signal semaphore is signaled once the image is actually ready for use.
// An out-of-date swapchain surfaces as core.ErrSwapchainOutOfDate.
func (vs *VulkanSwapchain) AcquireNextImage(timeoutNS uint64, signal framegraph.Semaphore) (uint32, error) {
	var signalHandle vk.Semaphore
	if signal != nil {
		vulkanSemaphore, ok := signal.(*VulkanSemaphore)
		if !ok {
			err := fmt.Errorf("acquire requires a Vulkan semaphore")
			core.LogError(err.Error())
			return 0, err
		}
		signalHandle = vulkanSemaphore.Handle
	}

	var imageIndex uint32
	result := vk.AcquireNextImage(vs.context.Device.LogicalDevice, vs.Handle, timeoutNS, signalHandle, vk.NullFence, &imageIndex)
	if result == vk.ErrorOutOfDate {
		return 0, core.ErrSwapchainOutOfDate
	}
	// Suboptimal still acquired an image, so keep going this frame.
	if result != vk.Success && result != vk.Suboptimal {
		err := fmt.Errorf("failed to acquire swapchain image with result: %s", VulkanResultString(result))
		core.LogError(err.Error())
		return 0, err
	}

	return imageIndex, nil
}

// Present returns the image to the swapchain for presentation once the wait
// semaphore is signaled.
func (vs *VulkanSwapchain) Present(imageIndex uint32, wait framegraph.Semaphore) error {
	presentInfo := vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{vs.Handle},
		PImageIndices:  []uint32{imageIndex},
		PResults:       nil,
	}

	if wait != nil {
		vulkanSemaphore, ok := wait.(*VulkanSemaphore)
		if !ok {
			err := fmt.Errorf("present requires a Vulkan semaphore")
			core.LogError(err.Error())
			return err
		}
		presentInfo.WaitSemaphoreCount = 1
		presentInfo.PWaitSemaphores = []vk.Semaphore{vulkanSemaphore.Handle}
	}

	result := vk.QueuePresent(vs.presentQueue, &presentInfo)
	if result == vk.ErrorOutOfDate || result == vk.Suboptimal {
		return core.ErrSwapchainOutOfDate
	}
	if result != vk.Success {
		err := fmt.Errorf("failed to present swapchain image with result: %s", VulkanResultString(result))
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (vs *VulkanSwapchain) SwapchainDestroy(context *VulkanContext) {
	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	// Only destroy the views, not the images, since those are owned by the
	// swapchain and are destroyed with it.
	for i := 0; i < len(vs.Views); i++ {
		vk.DestroyImageView(context.Device.LogicalDevice, vs.Views[i], context.Allocator)
	}
	vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
	vs.Handle = vk.NullSwapchain
}
