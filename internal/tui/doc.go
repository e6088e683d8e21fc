// Package tui implements the interactive item browser.
//
// Records arrive as [BatchMsg] values while the loader is still running, so
// the list fills in chunk by chunk. Failed items stay in the list with an
// error marker.
//
// Keys: "/" filters, "b" cycles the brand filter, "c" copies the selected
// item's embed tag, "a" copies its Amazon link and "q" quits.
package tui
