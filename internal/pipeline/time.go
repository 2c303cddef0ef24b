package pipeline

import "time"

// nowUnix is a seam so tests can observe Summary.GeneratedAt without
// depending on wall-clock time directly in assertions.
var nowUnix = func() int64 { return time.Now().Unix() }
