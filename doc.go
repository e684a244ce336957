// Package hockey is the composition root for the hockey annotation editor.
//
// It connects the marker model, edit history and timeline scheduler
// (pkg/core, pkg/history, pkg/reactive) with the project archive and user
// settings, and hands back a ready session.Editor.
//
// An editor holds one project at a time. Every edit goes through the undo
// history; observers registered with Observe receive at most one batched
// notification per coalescing window.
//
// Usage:
//
//	ed, err := hockey.New(hockey.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer ed.Close()
//
//	ed.Observe(timelineView)
//	if _, err := ed.AddMarker(hockey.Marker{StartFrame: 120, EndFrame: 180, EventName: "Goal"}); err != nil {
//		return err
//	}
//	err = ed.Save(ctx, "final.hep")
package hockey
