// Package diskcache stores catalog items on disk so that browsing a listing
// or walking a playback queue does not need the network or the whole
// catalog in memory.
//
// # Files
//
// Each Cache is two files:
//   - an index file: a headerless array of 8-byte body offsets, entry n
//     pointing at record n
//   - a body file: records appended back to back, each laid out as
//     [type:1][id:16][name][0x00][runtime_ticks:8][playback_ticks:8]
//
// Integers are native-endian. Record numbers are 1-based, so record n is
// found with one fixed-width read of the index and one seek into the body.
// Records are never rewritten; Open truncates both files.
//
// A Manager keeps two caches under a runtime directory: the payload cache
// for the listing being browsed and the playlist cache, which only accepts
// playable items.
//
// # Basic Usage
//
//	m := diskcache.NewManager(dir, logger)
//	if err := m.Init(); err != nil {
//	    return err
//	}
//	defer m.Clear()
//
//	ok, err := m.PayloadAdd(item)
//	item, found, err := m.PayloadGet(1)
//
// # Thread Safety
//
// None. One goroutine of one process may use a runtime directory.
package diskcache
