// Package analysis inspects recorded joint motion.
//
//   - [PowerSpectrum]: magnitude spectrum of a signal, zero-padded to a power of two
//   - [DominantPeriod]: the strongest repeating period of a signal, in samples
//   - [JointSignal]: one translation axis of a joint extracted from run samples
//
// A walk cycle shows up as the dominant period of the arm's sway:
//
//	signal := analysis.JointSignal(samples, "right_arm", 0)
//	period, ok := analysis.DominantPeriod(signal)
package analysis
