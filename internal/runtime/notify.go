package runtime

import "github.com/sirupsen/logrus"

// Notifier receives remote-write failures the runtime deliberately does not
// roll back. Implementations surface them as non-blocking notifications;
// nothing here may stall or fail the state machine.
type Notifier interface {
	NotifyError(op string, err error)
}

// LogNotifier reports failures through logrus.
type LogNotifier struct {
	log *logrus.Entry
}

// NewLogNotifier creates a Notifier backed by the application logger.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logrus.WithField("component", "session-runtime")}
}

func (n *LogNotifier) NotifyError(op string, err error) {
	n.log.WithError(err).WithField("op", op).Error("remote write failed")
}
