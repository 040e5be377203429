package core

import (
	"errors"
)

var (
	// ErrSwapchainOutOfDate is returned when the presentation surface no longer
	// matches the swapchain. Recreation policy belongs to the caller.
	ErrSwapchainOutOfDate = errors.New("swapchain out of date or suboptimal")
	// ErrNotInitialized is returned when a frame cycle is requested before
	// per-frame resources have been allocated.
	ErrNotInitialized = errors.New("frame graph not initialized")
	// ErrNoSwapchainImages is returned when the presentation surface reports
	// zero presentable images at initialization time.
	ErrNoSwapchainImages = errors.New("swapchain has zero images")
)
