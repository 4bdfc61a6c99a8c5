// Package scrollsync keeps a rendered Markdown viewport aligned with the line being edited.
//
// A parsed document is flattened into an Index of anchored block lines. Editor caret moves
// are resolved against the index to the nearest block and turned into scroll instructions
// for a Viewport; manual viewport scrolling is remembered as a percentage of content height
// so it survives a full re-render. All types in this package are meant to be driven from a
// single goroutine and do no locking of their own.
package scrollsync
