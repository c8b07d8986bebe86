package state

// DefaultMaxAttempts caps the retries of one logical operation.
const DefaultMaxAttempts = 3

// MaxRetryMessage is carried by the validationError published when the retry
// budget is spent.
const MaxRetryMessage = "max retry attempts reached"

// RetryCounter tracks retries of one logical operation.
type RetryCounter struct {
	Attempts int
	Max      int
}

// NewRetryCounter returns a fresh counter with the default budget.
func NewRetryCounter() RetryCounter {
	return RetryCounter{Max: DefaultMaxAttempts}
}

func (c *RetryCounter) max() int {
	if c.Max <= 0 {
		return DefaultMaxAttempts
	}
	return c.Max
}

// Reset starts a fresh invocation.
func (c *RetryCounter) Reset() {
	c.Attempts = 0
}

// Exhausted reports whether no retry is left. Checked before consuming.
func (c *RetryCounter) Exhausted() bool {
	return c.Attempts >= c.max()
}

// Consume takes one retry from the budget. It returns false, without
// changing the counter, when the budget is already spent.
func (c *RetryCounter) Consume() bool {
	if c.Exhausted() {
		return false
	}
	c.Attempts++
	return true
}

// Remaining returns how many retries are left.
func (c *RetryCounter) Remaining() int {
	if n := c.max() - c.Attempts; n > 0 {
		return n
	}
	return 0
}
