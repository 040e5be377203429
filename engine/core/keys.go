package core

// Key identifies a keyboard key in platform callbacks. Values match glfw key
// codes so the platform layer can pass them through unchanged.
type Key uint32

const (
	KEY_SPACE  Key = 32
	KEY_ESCAPE Key = 256
	KEY_ENTER  Key = 257
)
