package utils

import "fmt"

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FormatElapsed splits seconds into zero-padded minute and second strings
// for the elapsed-time display, e.g. 75 -> "01", "15".
func FormatElapsed(totalSeconds int) (minutes string, seconds string) {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return fmt.Sprintf("%02d", totalSeconds/60), fmt.Sprintf("%02d", totalSeconds%60)
}
