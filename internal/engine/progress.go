package engine

import "github.com/sirupsen/logrus"

// reportProgress emits a status line for the current phase's progress,
// throttled so it doesn't flood the log: every 25 tiles below 100, every
// 100 below 1000, every 1000 above that, plus one unconditional line
// when final is true (phase end).
func reportProgress(complete, total, level int, final bool) {
	if !final && !shouldReport(complete) {
		return
	}
	logrus.WithFields(logrus.Fields{
		"level": level,
		"total": total,
	}).Infof("rendered %d/%d tiles", complete, total)
}

func shouldReport(complete int) bool {
	switch {
	case complete < 100:
		return complete%25 == 0
	case complete < 1000:
		return complete%100 == 0
	default:
		return complete%1000 == 0
	}
}
