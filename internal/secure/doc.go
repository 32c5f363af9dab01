// Package secure provides memory-safe generation of secret values.
//
// Random bytes and the characters derived from them are kept in memguard
// locked buffers, which are:
//
//   - Protected from swapping via mlock
//   - Surrounded by guard pages
//   - Overwritten with zeros on destruction
//
// Only the final string handed to the caller lives in ordinary Go memory,
// because the AWS SDK needs it there to build the request.
//
// # Platform Behavior
//
// Memory locking behavior varies by platform:
//
//   - Linux: Requires RLIMIT_MEMLOCK to be set appropriately
//   - macOS: Works out of the box
//   - Windows: Uses VirtualLock
//
// It does NOT protect against:
//
//   - Attackers with root access to the running process
//   - Hardware-level attacks (cold boot, DMA)
package secure
