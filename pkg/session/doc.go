// Package session owns the editing session context.
//
// An Info describes the session the build server assigned: its id, the
// workspace and session paths, and the last reported bundle status. Infos
// are immutable. The Owner replaces the current Info wholesale when a new
// session starts or a build finishes, so readers holding an old Info never
// observe a partial update.
//
//	owner := session.NewOwner(client)
//	info, err := owner.Init(ctx)
//	...
//	owner.ApplyBuild(ev.SessionID, ev.Success, ev.BuildError())
package session
