package game

import "fmt"

// FormatTime renders ms as seconds and hundredths, e.g. 4567 -> "04.56".
func FormatTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%02d.%02d", ms/1000, (ms%1000)/10)
}

// FormatClock renders ms as minutes and seconds, e.g. 922000 -> "15:22".
func FormatClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	secs := ms / 1000
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
