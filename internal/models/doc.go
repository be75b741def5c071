// Package models defines the value types shared between media sources, the status aggregate and the sinks.
//
// The package contains three groups of types:
//
// 1. Field values
//   - [Optional] : a Known(T) / Unknown sum type used for every status field
//   - [PlaybackState] : Stopped, Playing or Paused
//
// 2. Source facts
//   - [TrackInfo] : identity and metadata of the current track
//   - [Session] : everything one query of a media source returns
//
// 3. History records
//   - [Play] : a track that was published as "now playing"
//
// All field values are comparable with ==, which is what dirty tracking in package status relies on.
package models
