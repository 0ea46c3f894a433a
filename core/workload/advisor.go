package workload

import "fmt"

// Advisor receives advisory diagnostics produced while normalizing raw
// statistics. Advisories are informational only and never affect the
// computed workload.
type Advisor interface {
	// Warnf reports a condition that likely distorts the estimate.
	Warnf(format string, args ...interface{})

	// Advisef reports a hint on how the estimate could be made more accurate.
	Advisef(format string, args ...interface{})
}

// NopAdvisor discards all advisories.
type NopAdvisor struct{}

func (NopAdvisor) Warnf(string, ...interface{})   {}
func (NopAdvisor) Advisef(string, ...interface{}) {}

// CollectingAdvisor retains advisories as data, oldest first.
type CollectingAdvisor struct {
	Warnings []string
	Advice   []string
}

func (a *CollectingAdvisor) Warnf(format string, args ...interface{}) {
	a.Warnings = append(a.Warnings, fmt.Sprintf(format, args...))
}

func (a *CollectingAdvisor) Advisef(format string, args ...interface{}) {
	a.Advice = append(a.Advice, fmt.Sprintf(format, args...))
}
