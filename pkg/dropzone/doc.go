// Package dropzone tracks drop targets and the drag in progress.
//
// A Manager is created per editor session. Surfaces register zones with
// Register and remove them with Unregister when they unmount. The host UI
// reports the drag with StartDrag, UpdateDragPosition and HandleDrop or
// EndDrag.
//
// # Hit testing
//
// The zone under a point is the most recently registered zone whose bounds
// contain it. Re-registering an id moves the zone to the top. A drop is
// accepted only when that topmost zone accepts the dragged type; zones
// underneath are not consulted.
//
// # Visual state
//
// Elements that implement Highlighter are told when their zone becomes
// Accepting (eligible for the current drag), Hover (under the pointer) or
// Idle. At most one zone is in Hover at any time. SetDropState is called
// only when the state changes.
package dropzone
