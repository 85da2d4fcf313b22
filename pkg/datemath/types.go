package datemath

import "time"

// DefaultCacheSize bounds the number of resolved *time.Location values kept in memory.
const DefaultCacheSize = 128

// localLayouts are the accepted wall-clock layouts, tried in order. None carries a UTC offset.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}
