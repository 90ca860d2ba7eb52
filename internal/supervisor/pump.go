package supervisor

import (
	"io"
	"sync/atomic"

	"github.com/takoyaki65/dsa-watchdog/internal/iosink"
)

// pump copies r into sink in fixed-size chunks until r returns EOF (which
// happens once the child closes its end of the pipe, whether by exiting
// normally or being killed), returns any other read error, or the sink
// overflows. Unlike the source's poll-then-read loop it blocks in Read,
// which is acceptable because each pump runs on its own goroutine rather
// than sharing one thread with memory sampling.
//
// setOLE controls whether an overflow on this stream flips the shared OLE
// flag: only stdout does; a stderr overflow still ends the pump
// and requests an early finish, it just stays invisible to the verdict.
func pump(r io.Reader, sink *iosink.Sink, bufSize int, finished *atomic.Bool, setOLE bool, ole *atomic.Bool) {
	buf := make([]byte, bufSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if sink.Append(buf[:n]) == iosink.Overflowed {
				finished.Store(true)
				if setOLE {
					ole.Store(true)
				}
				return
			}
		}
		if err != nil {
			return
		}
	}
}
