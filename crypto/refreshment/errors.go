package refreshment

import "fmt"

// FinalResponseVerificationError reports which of the two verification
// equations failed. Check #1 (z·Y == a + c·X) is evaluated first; when it
// fails, check #2 is never evaluated, so Check is always 1 or 2, never both.
type FinalResponseVerificationError struct {
	Check int
}

func (e *FinalResponseVerificationError) Error() string {
	return fmt.Sprintf("refreshment: final response verification failed at check %d", e.Check)
}
