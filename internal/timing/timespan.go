package timing

import "fmt"

// TicksPerSecond is the fixed simulation rate every TimeSpan is measured against.
const TicksPerSecond = 20.0

// TimeSpan is a duration stored in simulation ticks.
type TimeSpan float64

func Ticks(n float64) TimeSpan      { return TimeSpan(n) }
func Seconds(s float64) TimeSpan    { return TimeSpan(s * TicksPerSecond) }
func (t TimeSpan) InTicks() float64 { return float64(t) }
func (t TimeSpan) InSeconds() float64 {
	return float64(t) / TicksPerSecond
}

func (t TimeSpan) String() string {
	return fmt.Sprintf("%.2ft", float64(t))
}
