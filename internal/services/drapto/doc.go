// Package drapto makes optional AV1 archive copies of finished renders with
// the Drapto Go library and relays its Reporter callbacks as ProgressUpdate
// values.
package drapto
