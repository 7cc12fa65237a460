// Package split partitions a polygon mesh into N pieces of roughly equal
// size by repeatedly cutting along one axis.
//
// Each iteration sorts the remaining geometry along the axis, selects a
// prefix whose vertex or face count approximates an even share of what is
// left, and extracts it into an independent mesh. Faces are never cut: a
// face belongs wholly to one piece. Whatever remains after parts-1 cuts is
// the last piece.
//
// The package does not know about scenes or files. It drives a Host, the
// application that owns the mesh, through a small capability interface.
package split
