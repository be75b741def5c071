// package status holds the change-tracked playback status shared by the sampling and publishing loops.
//
// Every field lives in its own [Tracked] cell so readers never block on a refresh in progress.
// [Status.Refresh] is the only writer; [Status.Snapshot] is safe to call from any goroutine at
// any time and never touches change state.
package status
